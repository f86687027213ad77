package skeleton

// RegistryBuilderOption is a functional option for configuring a Registry via NewRegistry.
type RegistryBuilderOption func(*registry)

// WithCapacity is an option builder that preallocates room for the expected number of bones.
//
// Parameters:
//   - n: the expected bone count
//
// Returns:
//   - RegistryBuilderOption: a function that applies the capacity option to a registry
func WithCapacity(n int) RegistryBuilderOption {
	return func(r *registry) {
		if len(r.bones) > 0 {
			return
		}
		r.bones = make([]Bone, 0, n)
		r.indices = make(map[string]int, n)
	}
}

// WithBones is an option builder that registers bones in order, as if RegisterOrGet had been
// called for each. Duplicate names keep the first offset.
//
// Parameters:
//   - bones: the bones to register
//
// Returns:
//   - RegistryBuilderOption: a function that applies the bones option to a registry
func WithBones(bones ...Bone) RegistryBuilderOption {
	return func(r *registry) {
		for _, b := range bones {
			r.RegisterOrGet(b.Name, b.Offset)
		}
	}
}
