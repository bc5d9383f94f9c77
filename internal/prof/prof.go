// Package prof owns the runtime profiling sinks behind the CLI's
// --cpuprofile, --memprofile and --trace flags.
package prof

import (
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Options names the artifact paths. An empty path disables the
// corresponding profile.
type Options struct {
	CPU   string
	Mem   string
	Trace string
}

// Session holds the profile sinks opened for one invocation.
type Session struct {
	cpu     *os.File
	trc     *os.File
	memPath string
}

// Start opens every requested profile. On error the partially started
// session is torn down, so the caller never cleans up half-open state.
func Start(o Options) (*Session, error) {
	s := &Session{memPath: o.Mem}
	if o.CPU != "" {
		f, err := os.Create(o.CPU)
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, err
		}
		s.cpu = f
	}
	if o.Trace != "" {
		f, err := os.Create(o.Trace)
		if err != nil {
			_ = s.Stop()
			return nil, err
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			_ = s.Stop()
			return nil, err
		}
		s.trc = f
	}
	return s, nil
}

// Stop flushes and closes the active profiles. The heap profile, when
// requested, is captured here: it only makes sense at the end of the run.
// Safe on a nil session and idempotent.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}
	if s.cpu != nil {
		pprof.StopCPUProfile()
		_ = s.cpu.Close()
		s.cpu = nil
	}
	if s.trc != nil {
		trace.Stop()
		_ = s.trc.Close()
		s.trc = nil
	}
	if s.memPath == "" {
		return nil
	}
	path := s.memPath
	s.memPath = ""
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
