//go:build js && wasm

package main

import (
	"math"
	"syscall/js"

	"github.com/cwbudde/algo-spectral/dsp/analyzer"
	"github.com/cwbudde/algo-spectral/dsp/window"
	"github.com/cwbudde/algo-spectral/internal/session"
)

var (
	sessions session.Registry
	funcs    []js.Func

	// Scratch copies between JS typed arrays and Go slices, reused per handle.
	inputs = make(map[session.Handle][]float32)
)

func main() {
	api := js.Global().Get("Object").New()
	api.Set("create", export(create))
	api.Set("process", export(process))
	api.Set("processBytes", export(processBytes))
	api.Set("binFrequency", export(binFrequency))
	api.Set("close", export(closeSession))
	api.Set("windows", export(windowNames))

	js.Global().Set("SpectralAnalyzer", api)
	select {}
}

// create(size, options?) returns a numeric handle, or {error: message}.
func create(args []js.Value) any {
	size, errv := intArg(args, 0, "create", "window length")
	if errv != nil {
		return errv
	}

	var (
		opts  session.Options
		aopts []analyzer.Option
	)
	if len(args) > 1 && args[1].Type() == js.TypeObject {
		o := args[1]
		if v := o.Get("sampleRate"); v.Type() == js.TypeNumber {
			aopts = append(aopts, analyzer.WithSampleRate(v.Float()))
		}
		if v := o.Get("window"); v.Type() == js.TypeString {
			t, err := window.Parse(v.String())
			if err != nil {
				return errorValue(err.Error())
			}
			aopts = append(aopts, analyzer.WithWindow(t))
		}
		if v := o.Get("scale"); v.Type() == js.TypeString {
			s, err := analyzer.ParseScale(v.String())
			if err != nil {
				return errorValue(err.Error())
			}
			aopts = append(aopts, analyzer.WithScale(s))
		}
		minDB, maxDB := o.Get("minDecibels"), o.Get("maxDecibels")
		if minDB.Type() == js.TypeNumber && maxDB.Type() == js.TypeNumber {
			aopts = append(aopts, analyzer.WithDecibelRange(minDB.Float(), maxDB.Float()))
		}
		if v := o.Get("smoothingTimeConstant"); v.Type() == js.TypeNumber {
			opts.Smoothing = v.Float()
		}
	}

	h, err := sessions.Open(size, opts, aopts...)
	if err != nil {
		return errorValue(err.Error())
	}
	inputs[h] = make([]float32, size)
	return int(h)
}

// process(handle, samples) returns a Float32Array of size/2 values.
func process(args []js.Value) any {
	h, samples, errv := readBlock(args, "process")
	if errv != nil {
		return errv
	}
	out, err := sessions.Process(h, samples)
	if err != nil {
		return errorValue(err.Error())
	}
	arr := js.Global().Get("Float32Array").New(len(out))
	for i, v := range out {
		arr.SetIndex(i, v)
	}
	return arr
}

// processBytes(handle, samples) returns a Uint8Array for texture upload.
func processBytes(args []js.Value) any {
	h, samples, errv := readBlock(args, "processBytes")
	if errv != nil {
		return errv
	}
	out, err := sessions.ProcessBytes(h, samples)
	if err != nil {
		return errorValue(err.Error())
	}
	arr := js.Global().Get("Uint8Array").New(len(out))
	js.CopyBytesToJS(arr, out)
	return arr
}

func binFrequency(args []js.Value) any {
	h, errv := handleArg(args, "binFrequency")
	if errv != nil {
		return errv
	}
	k, errv := intArg(args, 1, "binFrequency", "bin")
	if errv != nil {
		return errv
	}
	a, err := sessions.Analyzer(h)
	if err != nil {
		return errorValue(err.Error())
	}
	return a.BinFrequency(k)
}

func closeSession(args []js.Value) any {
	h, errv := handleArg(args, "close")
	if errv != nil {
		return errv
	}
	delete(inputs, h)
	if err := sessions.Close(h); err != nil {
		return errorValue(err.Error())
	}
	return js.Null()
}

func windowNames([]js.Value) any {
	names := window.Names()
	arr := js.Global().Get("Array").New(len(names))
	for i, n := range names {
		arr.SetIndex(i, n)
	}
	return arr
}

// readBlock copies the sample argument into the handle's input buffer.
// Length mismatches are passed through so the analyzer reports them.
func readBlock(args []js.Value, fn string) (session.Handle, []float32, any) {
	h, errv := handleArg(args, fn)
	if errv != nil {
		return 0, nil, errv
	}
	buf, ok := inputs[h]
	if !ok {
		return 0, nil, errorValue(session.ErrUnknownHandle.Error())
	}

	if len(args) < 2 || args[1].Type() != js.TypeObject || args[1].Get("length").Type() != js.TypeNumber {
		return 0, nil, errorValue(fn + ": samples must be an array or typed array")
	}
	src := args[1]
	n := src.Length()
	if n != len(buf) {
		return h, make([]float32, n), nil
	}
	for i := range buf {
		v := src.Index(i)
		if v.Type() != js.TypeNumber {
			return 0, nil, errorValue(fn + ": samples must be numbers")
		}
		buf[i] = float32(v.Float())
	}
	return h, buf, nil
}

// intArg reads args[i] as an integral number.
func intArg(args []js.Value, i int, fn, what string) (int, any) {
	if len(args) <= i || args[i].Type() != js.TypeNumber {
		return 0, errorValue(fn + ": " + what + " must be a number")
	}
	f := args[i].Float()
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, errorValue(fn + ": " + what + " must be an integer")
	}
	return args[i].Int(), nil
}

func handleArg(args []js.Value, fn string) (session.Handle, any) {
	v, errv := intArg(args, 0, fn, "handle")
	if errv != nil {
		return 0, errv
	}
	if v <= 0 || v > math.MaxUint32 {
		return 0, errorValue(session.ErrUnknownHandle.Error())
	}
	return session.Handle(v), nil
}

func errorValue(msg string) any {
	obj := js.Global().Get("Object").New()
	obj.Set("error", msg)
	return obj
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
