package main

import (
	"debug/elf"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/xyproto/env/v2"

	"github.com/eh-steve/elfloader"
)

type arrayFlags []string

func (i *arrayFlags) String() string {
	return strings.Join(*i, ",")
}

func (i *arrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

var machines = map[string]elf.Machine{
	"x86_64":  elf.EM_X86_64,
	"amd64":   elf.EM_X86_64,
	"aarch64": elf.EM_AARCH64,
	"arm64":   elf.EM_AARCH64,
}

func main() {
	var libs arrayFlags
	if v := env.Str("ELFLOAD_LIBS"); v != "" {
		libs = strings.Split(v, ":")
	}
	flag.Var(&libs, "l", "shared library to resolve imports from (repeatable)")
	var run = flag.String("run", "", "load the file as a module and call this exported function")
	var args = flag.String("args", "", "comma separated integer arguments for -run")
	var machine = flag.String("machine", env.Str("ELFLOAD_MACHINE", "x86_64"), "accepted e_machine: x86_64 or aarch64")
	var demangle = flag.Bool("demangle", env.Bool("ELFLOAD_DEMANGLE"), "demangle C++ symbol names in dumps")
	var trace = flag.Bool("trace", env.Bool("ELFLOAD_TRACE"), "print every applied relocation")
	var runInit = flag.Bool("init", true, "run init and fini arrays around -run")

	flag.Parse()

	if flag.NArg() == 0 {
		flag.PrintDefaults()
		os.Exit(2)
	}

	m, ok := machines[*machine]
	if !ok {
		log.Fatalf("unknown machine %q", *machine)
	}
	conf := elfloader.Config{Machine: m, Demangle: *demangle}
	if *trace {
		conf.RelocationDebugWriter = os.Stderr
	}

	if *run != "" {
		if flag.NArg() != 1 {
			log.Fatalf("-run takes exactly one file, got %d", flag.NArg())
		}
		callArgs, err := parseArgs(*args)
		if err != nil {
			log.Fatalf("bad -args: %s", err)
		}
		r, err := runModule(flag.Arg(0), libs, conf, *run, *runInit, callArgs)
		if err != nil {
			log.Fatalf("%s: %s", flag.Arg(0), err)
		}
		fmt.Printf("%s returned %d (0x%x)\n", *run, r, r)
		return
	}

	var files []string
	for _, pattern := range flag.Args() {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			log.Fatalf("bad pattern %q: %s", pattern, err)
		}
		if len(matches) == 0 {
			log.Printf("no files match %q", pattern)
		}
		files = append(files, matches...)
	}
	failed := false
	for _, file := range files {
		if err := dump(file, conf); err != nil {
			log.Printf("%s: %s", file, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func parseArgs(s string) ([]uintptr, error) {
	if s == "" {
		return nil, nil
	}
	var args []uintptr
	for _, field := range strings.Split(s, ",") {
		v, err := strconv.ParseInt(strings.TrimSpace(field), 0, 64)
		if err != nil {
			return nil, err
		}
		args = append(args, uintptr(v))
	}
	return args, nil
}

func dump(path string, conf elfloader.Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, err := elfloader.Load(f, conf)
	if err != nil {
		return err
	}
	defer img.Close()

	fmt.Printf("==> %s <==\n", path)
	return elfloader.Dump(img, os.Stdout)
}

func runModule(path string, libs []string, conf elfloader.Config, name string, runInit bool, args []uintptr) (uintptr, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	img, err := elfloader.Load(f, conf)
	if err != nil {
		return 0, err
	}
	shims, err := elfloader.ResolveShims(img, libs)
	_ = img.Close()
	if err != nil {
		return 0, err
	}

	module, err := elfloader.LoadModule(f, shims, conf)
	if err != nil {
		return 0, err
	}
	if err = elfloader.MakeExecutable(module); err != nil {
		return 0, err
	}
	if runInit {
		if err = elfloader.RunInitFunctions(module); err != nil {
			return 0, err
		}
	}
	r, err := elfloader.Call(module, name, args...)
	if err != nil {
		return 0, err
	}
	if runInit {
		if err = elfloader.RunFiniFunctions(module); err != nil {
			return r, err
		}
	}
	// the module stays mapped; code it started may still be running
	return r, nil
}
