package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatCSV   = "csv"
)

// frameResult summarizes one analyzed block.
type frameResult struct {
	Index   int     `json:"index" yaml:"index"`
	TimeSec float64 `json:"time_s" yaml:"time_s"`
	PeakBin int     `json:"peak_bin" yaml:"peak_bin"`
	PeakHz  float64 `json:"peak_hz" yaml:"peak_hz"`
	Peak    float32 `json:"peak" yaml:"peak"`
	Mean    float32 `json:"mean" yaml:"mean"`

	CentroidHz float64 `json:"centroid_hz" yaml:"centroid_hz"`
	Flatness   float64 `json:"flatness" yaml:"flatness"`
	RMSdBFS    float64 `json:"rms_dbfs" yaml:"rms_dbfs"`
}

// report is the complete output of the analyze command.
type report struct {
	File         string        `json:"file" yaml:"file"`
	SampleRate   int           `json:"sample_rate" yaml:"sample_rate"`
	Channels     int           `json:"channels" yaml:"channels"`
	DurationSec  float64       `json:"duration_s" yaml:"duration_s"`
	WindowLength int           `json:"window_length" yaml:"window_length"`
	Hop          int           `json:"hop" yaml:"hop"`
	Window       string        `json:"window" yaml:"window"`
	Scale        string        `json:"scale" yaml:"scale"`
	BinWidthHz   float64       `json:"bin_width_hz" yaml:"bin_width_hz"`
	Frames       []frameResult `json:"frames" yaml:"frames"`
}

func writeReport(w io.Writer, format string, r *report) error {
	switch format {
	case formatTable:
		return writeReportTable(w, r)
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case formatCSV:
		return writeReportCSV(w, r)
	default:
		return fmt.Errorf("unknown output format %q (want table, json, yaml or csv)", format)
	}
}

func writeReportTable(w io.Writer, r *report) error {
	if _, err := fmt.Fprintf(w, "%s: %d Hz, %d ch, %.3f s\n", r.File, r.SampleRate, r.Channels, r.DurationSec); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "window %s, %d samples, hop %d, %.3f Hz/bin, %s scale\n\n",
		r.Window, r.WindowLength, r.Hop, r.BinWidthHz, r.Scale); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintln(tw, "Frame\tTime [s]\tPeak Bin\tPeak [Hz]\tPeak\tMean\tCentroid [Hz]\tFlatness\tRMS [dBFS]\t"); err != nil {
		return err
	}
	for _, f := range r.Frames {
		if _, err := fmt.Fprintf(tw, "%d\t%.3f\t%d\t%.1f\t%.4f\t%.4f\t%.1f\t%.4f\t%.1f\t\n",
			f.Index, f.TimeSec, f.PeakBin, f.PeakHz, f.Peak, f.Mean,
			f.CentroidHz, f.Flatness, f.RMSdBFS); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writeReportCSV(w io.Writer, r *report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "time_s", "peak_bin", "peak_hz", "peak", "mean", "centroid_hz", "flatness", "rms_dbfs"}); err != nil {
		return err
	}
	for _, f := range r.Frames {
		row := []string{
			strconv.Itoa(f.Index),
			strconv.FormatFloat(f.TimeSec, 'f', 6, 64),
			strconv.Itoa(f.PeakBin),
			strconv.FormatFloat(f.PeakHz, 'f', 3, 64),
			strconv.FormatFloat(float64(f.Peak), 'f', 6, 32),
			strconv.FormatFloat(float64(f.Mean), 'f', 6, 32),
			strconv.FormatFloat(f.CentroidHz, 'f', 3, 64),
			strconv.FormatFloat(f.Flatness, 'f', 6, 64),
			strconv.FormatFloat(f.RMSdBFS, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
