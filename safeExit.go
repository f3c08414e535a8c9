package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var SafeExitInst = new(SafeExit)

func InitSafeExit() {
	go SafeExitInst.ListenSignal()
}

// SafeExit runs registered cleanup funcs in reverse registration order, like
// defer, at most once: either at the normal end of a run or when a stop
// signal arrives. Funcs registered later may still log through writers
// registered earlier.
type SafeExit struct {
	funcs []func()
	mu    sync.Mutex
	done  bool
}

func (s *SafeExit) Register(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.funcs = append(s.funcs, f)
}

// Cleanup 执行已注册的清理函数
func (s *SafeExit) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return
	}
	s.done = true
	for i := len(s.funcs) - 1; i >= 0; i-- {
		s.funcs[i]()
	}
}

func (s *SafeExit) exit() {
	s.Cleanup()
	os.Exit(130)
}

func (s *SafeExit) ListenSignal() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	for sig := range sigs {
		switch sig {
		case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
			fmt.Fprintf(os.Stderr, "received signal %v, flushing missing tiles and stopping\n", sig)
			s.exit()
		}
	}
}
