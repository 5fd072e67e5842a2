package facts

// FilterTablesByModules returns a new Tables object containing only rows
// located in one of the given modules. Generator rows belong to the module
// hosting the generator.
func FilterTablesByModules(tables Tables, modules map[string]bool) Tables {
	if len(modules) == 0 {
		return emptyTables()
	}
	out := emptyTables()

	for _, row := range tables.Injections {
		if modules[row.Module] {
			out.Injections = append(out.Injections, row)
		}
	}
	for _, row := range tables.Ports {
		if modules[row.Module] {
			out.Ports = append(out.Ports, row)
		}
	}
	for _, row := range tables.Forwards {
		if modules[row.Module] {
			out.Forwards = append(out.Forwards, row)
		}
	}
	for _, row := range tables.GeneratorOutputs {
		if modules[row.TopModule] {
			out.GeneratorOutputs = append(out.GeneratorOutputs, row)
		}
	}

	return out
}

// FilterDeltaByModules returns a new Delta containing only rows for the specified modules.
func FilterDeltaByModules(delta Delta, modules map[string]bool) Delta {
	if len(modules) == 0 {
		return Delta{
			Added:   emptyTables(),
			Removed: emptyTables(),
		}
	}
	return Delta{
		Added:   FilterTablesByModules(delta.Added, modules),
		Removed: FilterTablesByModules(delta.Removed, modules),
	}
}
