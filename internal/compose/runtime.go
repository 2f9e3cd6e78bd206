package compose

// ResolveKVVariant selects the default session-store backend for a
// target runtime when a composition's service manifest doesn't pin one
// explicitly via kv_backend. Ported from
// cli/src/commands/compose/resolution/framework.rs's
// resolve_service_with_runtime: there, only the "wasmcloud"/"wasmtime"
// runtimes get the stable "kv-store" variant and everything else falls
// back to the draft2 "kv-store-d2" variant. This runtime has no WASI
// draft-stability axis, so the same match arms select between a
// durable (sqlite) and an ephemeral (in-memory) KVStore instead: only
// "wasmcloud"/"wasmtime" — named here for traceability to the ported
// switch, not because this Go runtime targets them — get the durable
// default; every other value, including "", gets the ephemeral one.
func ResolveKVVariant(runtime string) string {
	switch runtime {
	case "wasmcloud", "wasmtime":
		return "sqlite"
	default:
		return "memory"
	}
}
