package registry

// Merge unions bucket registries in the order given. When two buckets hold
// the same (name, version), the later bucket's entry replaces the earlier one.
// Latest is resolved afresh over each merged version set; the buckets' own
// latest values are not consulted.
func Merge(buckets []*Registry) *Registry {
	root := New()
	for _, b := range buckets {
		if b == nil {
			continue
		}
		for _, name := range b.order {
			src := b.packages[name]
			dst := root.entry(name)
			for _, v := range src.order {
				dst.put(src.versions[v])
			}
		}
	}
	for _, p := range root.packages {
		p.resolveLatest()
	}
	return root
}
