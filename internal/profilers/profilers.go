// Package profilers sets up profiling for the solver binaries.
//
// If linked, it installs the flags -prof (HTTP pprof server port), -cpu_profile and -mem_profile.
package profilers

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagProfiler   = flag.Int("prof", -1, "If set, serves the pprof profiler at the given port.")
	flagCPUProfile = flag.String("cpu_profile", "", "write cpu profile to `file`")
	flagMemProfile = flag.String("mem_profile", "", "write heap profile to `file` at exit")
	profilerAddr   string

	// globalCtx is set on the call to Setup.
	globalCtx context.Context
)

// Setup starts the HTTP (flag -prof) and CPU profilers (flag -cpu_profile), if they were configured.
// You should follow with a deferred call to OnQuit.
func Setup(ctx context.Context) error {
	globalCtx = ctx
	if *flagProfiler >= 0 {
		setupHTTPProfiler()
	}
	if *flagCPUProfile != "" {
		f, err := os.Create(*flagCPUProfile)
		if err != nil {
			return errors.Wrap(err, "could not create CPU profile")
		}
		if err = pprof.StartCPUProfile(f); err != nil {
			return errors.Wrap(err, "could not start CPU profile")
		}
	}
	return nil
}

// OnQuit stops the profilers and writes the heap profile. With -prof it keeps the program alive
// until the context given to Setup is cancelled, so the profiler can still be read.
func OnQuit() {
	// Don't freeze on panic.
	if err := recover(); err != nil {
		pprof.StopCPUProfile()
		panic(err)
	}
	if *flagCPUProfile != "" {
		pprof.StopCPUProfile()
	}
	if *flagMemProfile != "" {
		if err := writeHeapProfile(*flagMemProfile); err != nil {
			klog.Errorf("Failed to write heap profile: %+v", err)
		}
	}
	if *flagProfiler >= 0 {
		httpProfilerOnQuit()
	}
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "could not create heap profile")
	}
	defer func() { _ = f.Close() }()
	runtime.GC()
	return errors.Wrap(pprof.WriteHeapProfile(f), "could not write heap profile")
}

func setupHTTPProfiler() {
	profilerAddr = fmt.Sprintf("localhost:%d", *flagProfiler)
	fmt.Printf("Starting profiler on %s/debug/pprof\n", profilerAddr)
	fmt.Printf("- You can access it with: $ go tool pprof %s/debug/pprof/heap\n", profilerAddr)
	fmt.Printf("- Program will be kept alive on end, you will have to interrupt it (Ctrl+C) to exit\n")
	go func() {
		klog.Fatal(http.ListenAndServe(profilerAddr, nil))
	}()
}

// httpProfilerOnQuit keeps the program alive until interrupted.
func httpProfilerOnQuit() {
	if globalCtx.Err() != nil {
		return
	}
	for range 10 {
		runtime.GC()
	}
	fmt.Printf("- Program finished: kept alive with profiler opened at %s/debug/pprof\n", profilerAddr)
	fmt.Printf("- Interrupt (Ctrl+C) to exit\n")
	<-globalCtx.Done()
	fmt.Printf("... exiting ...\n")
}
