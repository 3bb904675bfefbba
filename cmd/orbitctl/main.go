// orbitctl is a command-line front end for the propagation service:
// decode a two-line element set and propagate it once, over a batch of
// time offsets, or inspect its decoded fields.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/propagation-service/core"
	"github.com/signalsfoundry/propagation-service/internal/logging"
	"github.com/signalsfoundry/propagation-service/internal/observability"
	"github.com/signalsfoundry/propagation-service/model"
	"github.com/signalsfoundry/propagation-service/service"
	"github.com/signalsfoundry/propagation-service/tle"
)

type fileConfig struct {
	Workers    int `yaml:"workers"`
	MaxHandles int `yaml:"max_handles"`
	Log        struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		Exporter    string  `yaml:"exporter"`
		Endpoint    string  `yaml:"endpoint"`
		SampleRatio float64 `yaml:"sample_ratio"`
	} `yaml:"tracing"`
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	cfg.Tracing.SampleRatio = 1.0
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

// readTLE resolves the element lines either from the --line1/--line2 flags
// or from a file holding a 2- or 3-line element set (the optional leading
// name line is skipped).
func readTLE(line1, line2, path string) (string, string, error) {
	if path == "" {
		if line1 == "" || line2 == "" {
			return "", "", fmt.Errorf("provide --line1 and --line2, or --file")
		}
		return line1, line2, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read TLE file %q: %w", path, err)
	}
	var lines []string
	for _, l := range strings.Split(string(raw), "\n") {
		if l = strings.TrimRight(l, "\r "); l != "" {
			lines = append(lines, l)
		}
	}
	switch len(lines) {
	case 2:
		return lines[0], lines[1], nil
	case 3:
		return lines[1], lines[2], nil
	default:
		return "", "", fmt.Errorf("TLE file %q has %d lines, want 2 or 3", path, len(lines))
	}
}

func parseTimes(spec string, start, step float64, count int) ([]float64, error) {
	if spec != "" {
		parts := strings.Split(spec, ",")
		times := make([]float64, 0, len(parts))
		for _, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("bad time offset %q", p)
			}
			times = append(times, v)
		}
		return times, nil
	}
	if count <= 0 {
		return nil, fmt.Errorf("provide --times, or --count with --start/--step")
	}
	times := make([]float64, count)
	for i := range times {
		times[i] = start + float64(i)*step
	}
	return times, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type stateJSON struct {
	PositionM  [3]float64 `json:"position_m"`
	VelocityMS [3]float64 `json:"velocity_m_s"`
}

type groundJSON struct {
	LatitudeDeg  float64 `json:"latitude_deg"`
	LongitudeDeg float64 `json:"longitude_deg"`
	AltitudeM    float64 `json:"altitude_m"`
}

func toJSON(st model.StateVector) stateJSON {
	return stateJSON{
		PositionM:  [3]float64{st.Position.X, st.Position.Y, st.Position.Z},
		VelocityMS: [3]float64{st.Velocity.X, st.Velocity.Y, st.Velocity.Z},
	}
}

func main() {
	var (
		configPath string
		line1      string
		line2      string
		tlePath    string
	)

	var (
		svc      *service.Service
		log      logging.Logger
		shutdown func(context.Context) error
	)

	root := &cobra.Command{
		Use:           "orbitctl",
		Short:         "Propagate satellite orbits from two-line element sets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			log = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

			tracingCfg := observability.TracingConfig{
				Enabled:     cfg.Tracing.Enabled,
				ServiceName: "orbitctl",
				Exporter:    cfg.Tracing.Exporter,
				Endpoint:    cfg.Tracing.Endpoint,
				SampleRatio: cfg.Tracing.SampleRatio,
			}
			shutdown, err = observability.InitTracing(cmd.Context(), tracingCfg, log)
			if err != nil {
				return err
			}

			metrics, err := observability.NewCollector(nil)
			if err != nil {
				return err
			}
			svc = service.New(service.Config{
				Workers:    cfg.Workers,
				MaxHandles: cfg.MaxHandles,
			}, log, metrics)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			observability.ShutdownWithTimeout(cmd.Context(), shutdown, log)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&line1, "line1", "", "element set line 1")
	root.PersistentFlags().StringVar(&line2, "line2", "", "element set line 2")
	root.PersistentFlags().StringVarP(&tlePath, "file", "f", "", "file with a 2- or 3-line element set")

	var (
		tsince float64
		ground bool
	)
	once := &cobra.Command{
		Use:   "once",
		Short: "Propagate a single time offset",
		RunE: func(cmd *cobra.Command, args []string) error {
			l1, l2, err := readTLE(line1, line2, tlePath)
			if err != nil {
				return err
			}
			st, err := svc.PropagateOnce(cmd.Context(), l1, l2, tsince)
			if err != nil {
				return err
			}
			if !ground {
				return printJSON(toJSON(st))
			}
			el, err := tle.Decode(l1, l2)
			if err != nil {
				return err
			}
			at := el.Epoch.Add(time.Duration(tsince * float64(time.Second)))
			lat, lon, alt := core.Subpoint(core.EarthFixed(st.Position, at))
			out := struct {
				stateJSON
				Ground groundJSON `json:"ground"`
			}{toJSON(st), groundJSON{lat, lon, alt}}
			return printJSON(out)
		},
	}
	once.Flags().Float64VarP(&tsince, "time", "t", 0, "time offset in seconds from epoch")
	once.Flags().BoolVar(&ground, "ground", false, "include the spherical subpoint under the satellite")

	var (
		timesSpec string
		start     float64
		step      float64
		count     int
	)
	batch := &cobra.Command{
		Use:   "batch",
		Short: "Propagate a batch of time offsets in parallel",
		RunE: func(cmd *cobra.Command, args []string) error {
			l1, l2, err := readTLE(line1, line2, tlePath)
			if err != nil {
				return err
			}
			times, err := parseTimes(timesSpec, start, step, count)
			if err != nil {
				return err
			}
			outcomes, err := svc.PropagateBatch(cmd.Context(), l1, l2, times)
			if err != nil {
				return err
			}
			type itemJSON struct {
				TimeS float64    `json:"time_s"`
				State *stateJSON `json:"state,omitempty"`
				Error string     `json:"error,omitempty"`
			}
			items := make([]itemJSON, len(outcomes))
			for i, o := range outcomes {
				items[i].TimeS = times[i]
				if o.Err != nil {
					items[i].Error = o.Err.Error()
					continue
				}
				st := toJSON(o.State)
				items[i].State = &st
			}
			return printJSON(items)
		},
	}
	batch.Flags().StringVar(&timesSpec, "times", "", "comma-separated time offsets in seconds")
	batch.Flags().Float64Var(&start, "start", 0, "first offset in seconds (with --count)")
	batch.Flags().Float64Var(&step, "step", 60, "offset step in seconds (with --count)")
	batch.Flags().IntVar(&count, "count", 0, "number of offsets (alternative to --times)")

	info := &cobra.Command{
		Use:   "info",
		Short: "Decode an element set and print its fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			l1, l2, err := readTLE(line1, line2, tlePath)
			if err != nil {
				return err
			}
			// Exercise the full handle lifecycle rather than decoding
			// directly, so the registered path stays covered.
			id, err := svc.CreateHandle(cmd.Context(), l1, l2)
			if err != nil {
				return err
			}
			defer svc.ReleaseHandle(cmd.Context(), id)

			fields, err := svc.HandleInfo(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(fields)
		},
	}

	root.AddCommand(once, batch, info)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "orbitctl: %v\n", err)
		os.Exit(1)
	}
}
