// Package clipfile persists animation clips on disk. It handles the
// versioned clip document format, canonical YAML/JSON serialization,
// and the output destinations a clip can be written to.
//
// Clips are read with [Load] or [Unmarshal] and written with [Save] or
// [Marshal] plus a [Writer] from [Open]. Formats are looked up in a
// [Registry] by name or file extension.
// Writing over an existing file requires explicit confirmation
// ([SaveOptions.Overwrite]).
package clipfile
