// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

// Command olespy pokes at a registered automation class from the command
// line: activate it (or attach to a running instance), invoke a member,
// and print the result. Collections may be enumerated element by element.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/olegoes/olegoes/com"
	"github.com/olegoes/olegoes/com/automation"
)

var attachRunning bool
var getProperty bool
var putProperty bool
var enumerate bool
var verbose bool

func init() {
	flag.Usage = usage
	flag.BoolVar(&attachRunning, "running", false, "attach to a running instance instead of activating a new one")
	flag.BoolVar(&getProperty, "get", false, "read the member as a property")
	flag.BoolVar(&putProperty, "put", false, "write the member as a property; the last argument is the value")
	flag.BoolVar(&enumerate, "enum", false, "enumerate the result as a collection")
	flag.BoolVar(&verbose, "v", false, "log diagnostics to stderr")
	flag.Parse()
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
	flag.PrintDefaults()
	fmt.Fprintln(flag.CommandLine.Output(), "  <class> <member> [arg...]\n\tProgID or {clsid}, member path such as Workbooks.Count, and arguments")
}

func usageln(args ...any) {
	fmt.Fprintln(flag.CommandLine.Output(), args...)
	usage()
	os.Exit(2)
}

func main() {
	class := flag.Arg(0)
	member := flag.Arg(1)
	if class == "" {
		usageln("No class provided")
	}
	if member == "" {
		usageln("No member provided")
	}
	if getProperty && putProperty {
		usageln("-get and -put are mutually exclusive")
	}

	if verbose {
		zl, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("error creating logger: %v\n", err)
		}
		defer zl.Sync()
		automation.SetLogger(zl)
	}

	if err := com.StartRuntime(); err != nil {
		log.Fatalf("error starting COM runtime: %v\n", err)
	}
	defer com.ShutdownRuntime()

	tracker := automation.NewTracker()
	defer tracker.ReleaseAll()

	var obj *automation.Object
	var err error
	if attachRunning {
		obj, err = tracker.ActiveObject(class)
	} else {
		obj, err = tracker.CreateObject(class)
	}
	if err != nil {
		log.Fatalf("error activating %q: %v\n", class, err)
	}

	kind := automation.CallMethod
	switch {
	case getProperty:
		kind = automation.GetProperty
	case putProperty:
		kind = automation.PutProperty
	}

	result, err := obj.Invoke(kind, member, parseArgs(flag.Args()[2:])...)
	if err != nil {
		log.Fatalf("error invoking %q: %v\n", member, err)
	}
	tracker.TrackVariant(result)

	if !enumerate {
		printVariant(result)
		return
	}

	items, err := automation.AsObject(result)
	if err != nil {
		log.Fatalf("error treating result as a collection: %v\n", err)
	}
	tracker.TrackObject(items)

	enum, err := items.NewEnum()
	if err != nil {
		log.Fatalf("error enumerating: %v\n", err)
	}
	defer enum.Close()

	i := 0
	err = enum.ForEach(func(v *automation.Variant) error {
		fmt.Printf("%4d: ", i)
		i++
		printVariant(v)
		return nil
	})
	if err != nil {
		log.Fatalf("error during enumeration: %v\n", err)
	}
}

// parseArgs turns command-line strings into typed values: integers and
// floats when they parse as such, booleans for true/false, strings
// otherwise.
func parseArgs(raw []string) []any {
	args := make([]any, len(raw))
	for i, s := range raw {
		switch {
		case s == "true":
			args[i] = true
		case s == "false":
			args[i] = false
		default:
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				args[i] = n
				break
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				args[i] = f
				break
			}
			args[i] = s
		}
	}
	return args
}

func printVariant(v *automation.Variant) {
	val, err := v.Value()
	if err != nil {
		fmt.Printf("<%v>\n", err)
		return
	}
	switch x := val.(type) {
	case *automation.Object:
		defer x.Close()
		fmt.Printf("<object %p>\n", x.UnsafeUnwrap())
	case *com.IUnknownABI:
		defer x.Release()
		fmt.Printf("<unknown %p>\n", x)
	default:
		fmt.Printf("%v\n", val)
	}
}
