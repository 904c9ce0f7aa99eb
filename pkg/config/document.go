package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/vito/boxdiff/pkg/boxtree"
	"github.com/vito/boxdiff/pkg/style"
)

// Element is one node of a layout document. An element with Text is a text
// leaf; any other element is a container.
//
//	id = "root"
//	style = { flex-direction = "column", padding = 1 }
//
//	[[children]]
//	text = "hello"
//	style = { color = "green", bold = true }
type Element struct {
	ID       string           `toml:"id,omitempty"`
	Text     *string          `toml:"text,omitempty"`
	Static   bool             `toml:"static,omitempty"`
	Style    style.Attributes `toml:"style,omitempty"`
	Children []Element        `toml:"children,omitempty"`
}

// IDs maps element ids to the nodes built for them.
type IDs map[string]boxtree.Handle

// Lookup returns the handle for id, or an error naming the missing id.
func (ids IDs) Lookup(id string) (boxtree.Handle, error) {
	h, ok := ids[id]
	if !ok {
		return boxtree.Handle{}, fmt.Errorf("no element with id %q", id)
	}
	return h, nil
}

// LoadDocument decodes a layout document from a TOML file.
func LoadDocument(path string) (Element, error) {
	var doc Element
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return Element{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// ParseDocument decodes a layout document from TOML source.
func ParseDocument(src string) (Element, error) {
	var doc Element
	if _, err := toml.Decode(src, &doc); err != nil {
		return Element{}, fmt.Errorf("parsing layout: %w", err)
	}
	return doc, nil
}

// BuildTree allocates a tree for doc and returns it with its root.
func BuildTree(doc Element) (*boxtree.Tree, boxtree.Handle, IDs, error) {
	tree := boxtree.New()
	ids := IDs{}
	root, err := build(tree, ids, doc, "root")
	if err != nil {
		return nil, boxtree.Handle{}, nil, err
	}
	return tree, root, ids, nil
}

func build(tree *boxtree.Tree, ids IDs, el Element, path string) (boxtree.Handle, error) {
	if el.ID != "" {
		path = el.ID
		if _, dup := ids[el.ID]; dup {
			return boxtree.Handle{}, fmt.Errorf("duplicate element id %q", el.ID)
		}
	}

	s := style.Resolve(el.Style)
	if el.Static {
		s.Static = true
	}

	var h boxtree.Handle
	if el.Text != nil {
		if len(el.Children) > 0 {
			return boxtree.Handle{}, fmt.Errorf("%s: text element cannot have children", path)
		}
		h = tree.NewText(*el.Text, s)
	} else {
		h = tree.NewContainer(s)
	}
	if el.ID != "" {
		ids[el.ID] = h
	}

	for i, child := range el.Children {
		c, err := build(tree, ids, child, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return boxtree.Handle{}, err
		}
		if err := tree.AppendChild(h, c); err != nil {
			return boxtree.Handle{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	return h, nil
}
