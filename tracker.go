package theoraclip

// Resource tracker for detecting cgo (libogg/libtheora/libvorbis) handle
// leaks at runtime.
//
// Usage: build with -tags leakcheck to enable tracking.
// In production builds (default), all tracker calls are no-ops.
//
// Example:
//
//	clip, _ := theoraclip.Open(src, opts)
//	defer clip.Close()
//	// ... decode ...
//	leaks := theoraclip.DumpLeaks() // returns all un-freed resources (empty if no leaks)

// ResourceKind identifies the type of tracked cgo resource.
type ResourceKind string

const (
	ResOggSyncState    ResourceKind = "ogg_sync_state"
	ResOggStreamState  ResourceKind = "ogg_stream_state"
	ResTheoraDecoder   ResourceKind = "th_dec_ctx"
	ResTheoraSetupInfo ResourceKind = "th_setup_info"
	ResVorbisDSPState  ResourceKind = "vorbis_dsp_state"
	ResVorbisBlock     ResourceKind = "vorbis_block"
)

// LeakRecord describes a tracked resource that has not been freed.
type LeakRecord struct {
	Kind  ResourceKind
	Addr  uintptr
	Stack string // call stack at allocation time (when available)
}
