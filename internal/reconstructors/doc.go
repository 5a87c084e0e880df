// Package reconstructors provides the Reconstructor implementations for every
// engine type the pipeline understands, and the dispatch table that maps a
// decoded object's type tag to its reconstructor.
//
// Each type lives in its own subpackage. The registry is built once at startup
// from explicit options; unknown type tags have no reconstructor and are ignored.
package reconstructors
