// Package shell owns the desktop window and its lifecycle. The Host
// interface hides the GUI toolkit from the rest of the launcher; FyneHost
// is the real implementation and StubHost stands in for tests.
//
// The package also holds the lifecycle hook that kills the backend when
// the window is destroyed. The hook is deliberately tolerant: it may be
// invoked from several close paths and still kills at most once.
package shell
