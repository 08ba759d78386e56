// Package nest merges many source documents into one tree keyed by a
// derived identity, annotating selected subtrees with count markers, and
// flattens such a tree back to root-level joined keys.
package nest

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/ingest"
	"github.com/agentic-research/jsonshape/internal/repair"
	"github.com/agentic-research/jsonshape/internal/transform"
	"github.com/agentic-research/jsonshape/internal/value"
	"go.uber.org/zap"
)

// keyField is the member a source may carry to choose its own node name.
const keyField = "key"

// Options controls a merge.
type Options struct {
	// Length lists node keys that get a direct child count.
	Length []string
	// Sum lists node keys that get the sum of their descendants' markers.
	Sum []string
	// Identity names the merge root when it is treated as a node.
	Identity string
	// AutoSumPrefix opts the root into Sum when Identity starts with it.
	AutoSumPrefix string
	// Wrapper members are placed first in the output and may be overridden.
	Wrapper *value.Object
	// Flat merges object contributions straight into the root, with no
	// markers and no manifest.
	Flat bool

	Reserved transform.Reserved
	Logger   *zap.Logger
}

// Skipped records a source that did not contribute to the merge.
type Skipped struct {
	Path string
	Err  error
}

// Result is a finished merge.
type Result struct {
	Tree value.Value
	// Merged counts the sources that contributed a node.
	Merged  int
	Skipped []Skipped
	// Repaired maps a source path to the repair passes that changed it.
	Repaired map[string][]string
}

// Validate rejects a key that is in both marker sets.
func (o Options) Validate() error {
	for _, k := range o.Length {
		if slices.Contains(o.Sum, k) {
			return fmt.Errorf("%w: key %q is in both the length and sum sets", api.ErrConfig, k)
		}
	}
	return nil
}

// ParseWrapper decodes a wrapper object given as JSON text. An empty string
// yields no wrapper.
func ParseWrapper(text string) (*value.Object, error) {
	if text == "" {
		return nil, nil
	}
	v, err := value.Parse([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid wrapper JSON: %v", api.ErrConfig, err)
	}
	if v.Kind() != value.KindObject {
		return nil, fmt.Errorf("%w: wrapper must be a JSON object, got %s", api.ErrConfig, v.Kind())
	}
	return v.Object(), nil
}

// Nest merges docs, in the order given, into one tree. Each source is
// repaired and decoded; one that still fails is skipped and reported.
func Nest(docs []ingest.Document, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := opts.Reserved

	res := &Result{Repaired: make(map[string][]string)}
	nodes := value.NewObject()
	for _, doc := range docs {
		content, changes, err := repair.Decode(doc.Data, logger.With(zap.String("file", doc.Path)))
		if len(changes) > 0 {
			res.Repaired[doc.Path] = changes
			logger.Debug("repaired source", zap.String("file", doc.Path), zap.Strings("changes", changes))
		}
		if err != nil {
			logger.Warn("skipping source", zap.String("file", doc.Path), zap.Error(err))
			res.Skipped = append(res.Skipped, Skipped{Path: doc.Path, Err: err})
			continue
		}

		key, content := contribution(doc.Name, content)
		if opts.Flat && content.Kind() == value.KindObject {
			nodes.Merge(content.Object())
		} else {
			nodes.Set(key, content)
		}
		res.Merged++
	}

	if opts.Flat {
		res.Tree = assemble(opts.Wrapper, nil, nodes, r)
		return res, nil
	}

	length, sum := opts.Length, slices.Clone(opts.Sum)
	if opts.Identity != "" && opts.AutoSumPrefix != "" && strings.HasPrefix(opts.Identity, opts.AutoSumPrefix) &&
		!slices.Contains(sum, opts.Identity) && !slices.Contains(length, opts.Identity) {
		sum = append(sum, opts.Identity)
	}

	manifest := value.NewObject()
	for _, key := range nodes.Keys() {
		node, _ := nodes.Get(key)
		node, count, ok := annotate(key, node, length, sum, r)
		if !ok {
			continue
		}
		nodes.Set(key, node)
		if slices.Contains(sum, key) {
			manifest.Set(key+"_total", value.Float(count))
		}
	}

	root, count, ok := annotate(opts.Identity, value.ObjectOf(nodes), length, sum, r)
	if ok && slices.Contains(sum, opts.Identity) {
		manifest.Set(opts.Identity+"_total", value.Float(count))
	}

	res.Tree = assemble(opts.Wrapper, manifest, root.Object(), r)
	return res, nil
}

// contribution derives the node key for decoded source content: a popped
// key member, else the source name. A single-member object whose only key
// is that node key is unwrapped.
func contribution(name string, content value.Value) (string, value.Value) {
	key := name
	obj := content.Object()
	if obj == nil {
		return key, content
	}
	if k, ok := obj.Get(keyField); ok {
		obj = obj.Clone()
		obj.Delete(keyField)
		key = k.Text()
		content = value.ObjectOf(obj)
	}
	if obj.Len() == 1 {
		if inner, ok := obj.Get(key); ok {
			return key, inner
		}
	}
	return key, content
}

// annotate attaches a marker to node when key is in either set. It returns
// the count and whether one was computed. Only objects carry the marker.
func annotate(key string, node value.Value, length, sum []string, r transform.Reserved) (value.Value, float64, bool) {
	var count float64
	switch {
	case slices.Contains(length, key):
		count = float64(directCount(node, r))
	case slices.Contains(sum, key):
		count = recursiveSum(node, r)
	default:
		return node, 0, false
	}
	if obj := node.Object(); obj != nil {
		obj = obj.Clone()
		obj.Set(r.LengthMarker, value.Float(count))
		node = value.ObjectOf(obj)
	}
	return node, count, true
}

// directCount counts object members other than markers, or array items.
func directCount(v value.Value, r transform.Reserved) int {
	switch v.Kind() {
	case value.KindObject:
		n := 0
		v.Object().Range(func(k string, _ value.Value) bool {
			if !r.IsMarker(k) {
				n++
			}
			return true
		})
		return n
	case value.KindArray:
		return v.Len()
	default:
		return 0
	}
}

// recursiveSum adds up the markers below v. An object member that carries
// a marker contributes that marker and is not descended into. Array items
// are always descended into, so an item's own marker is not counted.
// Scalars contribute nothing and a non-numeric marker counts as zero.
func recursiveSum(v value.Value, r transform.Reserved) float64 {
	var total float64
	switch v.Kind() {
	case value.KindArray:
		for _, item := range v.Items() {
			total += recursiveSum(item, r)
		}
	case value.KindObject:
		v.Object().Range(func(k string, child value.Value) bool {
			if !r.IsMarker(k) {
				total += childSum(child, r)
			}
			return true
		})
	}
	return total
}

func childSum(child value.Value, r transform.Reserved) float64 {
	if !child.IsContainer() {
		return 0
	}
	if marker, ok := child.Object().Get(r.LengthMarker); ok {
		f, _ := marker.Float64()
		return f
	}
	return recursiveSum(child, r)
}

// assemble lays out the output: wrapper members, then the manifest when it
// is non-empty, then the nodes. Later members replace earlier ones of the
// same name in place.
func assemble(wrapper, manifest, nodes *value.Object, r transform.Reserved) value.Value {
	out := value.NewObject()
	out.Merge(wrapper)
	if manifest.Len() > 0 {
		out.Set(r.Manifest, value.ObjectOf(manifest))
	}
	out.Merge(nodes)
	return value.ObjectOf(out)
}

// Unnest flattens a single document to root-level joined keys. Unlike Nest
// it does not repair its input: a malformed document is an error.
func Unnest(data []byte, r transform.Reserved) (value.Value, error) {
	v, err := value.Parse(data)
	if err != nil {
		return value.Value{}, err
	}
	return transform.Unnest(v, r), nil
}
