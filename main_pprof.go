//go:build !no_pprof

package main

import (
	"flag"
	"os"
	"runtime/pprof"

	"fortio.org/log"
)

var (
	cpuprofile = flag.String("profile-cpu", "", "write cpu profile to `file`")
	memprofile = flag.String("profile-mem", "", "write memory profile to `file`")
	cpuFile    *os.File
)

func init() {
	hookBefore = pprofBeforeHook
	hookAfter = pprofAfterHook
}

func pprofBeforeHook() int {
	if *cpuprofile == "" {
		return 0
	}
	var err error
	cpuFile, err = os.Create(*cpuprofile)
	if err != nil {
		return log.FErrf("can't open file for cpu profile: %v", err)
	}
	if err = pprof.StartCPUProfile(cpuFile); err != nil {
		return log.FErrf("can't start cpu profile: %v", err)
	}
	log.Infof("Writing cpu profile to %s", *cpuprofile)
	return 0
}

func pprofAfterHook() int {
	if cpuFile != nil {
		pprof.StopCPUProfile()
		cpuFile.Close()
	}
	if *memprofile == "" {
		return 0
	}
	f, err := os.Create(*memprofile)
	if err != nil {
		return log.FErrf("can't open file for mem profile: %v", err)
	}
	defer f.Close()
	if err = pprof.WriteHeapProfile(f); err != nil {
		return log.FErrf("can't write mem profile: %v", err)
	}
	log.Infof("Wrote memory profile to %s", *memprofile)
	return 0
}
