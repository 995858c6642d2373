// Command framectl converts positions between the ECI and ECF frames and
// prints satellite ephemerides from a TLE file.
//
// Negative coordinates must follow a "--" separator so they are not read
// as flags:
//
//	framectl fixed --epoch 2021-12-25T04:42:42.424Z -- 10000 40000 -5000
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/soniakeys/unit"
	"github.com/spf13/cobra"

	"github.com/brandon-sexton/openspace-coordinates/internal/epoch"
	"github.com/brandon-sexton/openspace-coordinates/internal/frames"
	"github.com/brandon-sexton/openspace-coordinates/internal/propagation"
	"github.com/brandon-sexton/openspace-coordinates/internal/tle"
	"github.com/brandon-sexton/openspace-coordinates/internal/vecmath"
)

// options are the persistent flags shared by all subcommands.
type options struct {
	epoch       string
	degrees     bool
	orthonormal bool
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "framectl",
		Short:        "Convert positions between Earth-centered inertial and fixed frames",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.epoch, "epoch", "", "RFC 3339 epoch (default: now)")
	root.PersistentFlags().BoolVar(&opts.degrees, "degrees", false, "Print angles in degrees instead of radians")
	root.PersistentFlags().BoolVar(&opts.orthonormal, "orthonormal-nutation", false, "Project the nutation matrix onto the nearest rotation")

	root.AddCommand(newConvertCmd(opts, "fixed", "Convert ECI positions to ECF"))
	root.AddCommand(newConvertCmd(opts, "inertial", "Convert ECF positions to ECI"))
	root.AddCommand(newSphericalCmd(opts))
	root.AddCommand(newMatricesCmd(opts))
	root.AddCommand(newEphemerisCmd(opts))

	return root
}

func (o *options) parseEpoch() (epoch.Epoch, error) {
	if o.epoch == "" {
		return epoch.New(time.Now()), nil
	}
	return epoch.Parse(o.epoch)
}

func (o *options) converter() (*frames.Converter, error) {
	// One epoch per invocation; no cache needed.
	return frames.NewConverter(frames.Config{OrthonormalNutation: o.orthonormal})
}

// parseVectors reads args as consecutive x y z triples.
func parseVectors(args []string) ([]vecmath.Vector3, error) {
	if len(args) == 0 || len(args)%3 != 0 {
		return nil, fmt.Errorf("expected x y z triples, got %d values", len(args))
	}
	out := make([]vecmath.Vector3, 0, len(args)/3)
	for i := 0; i < len(args); i += 3 {
		var v vecmath.Vector3
		for j := range v {
			f, err := strconv.ParseFloat(args[i+j], 64)
			if err != nil {
				return nil, fmt.Errorf("parsing %q: %w", args[i+j], err)
			}
			v[j] = f
		}
		out = append(out, v)
	}
	return out, nil
}

func printVector(w io.Writer, v vecmath.Vector3) {
	fmt.Fprintf(w, "%.9f %.9f %.9f\n", v[0], v[1], v[2])
}

func (o *options) printSpherical(w io.Writer, s vecmath.Vector3) {
	ra, dec := unit.Angle(s[1]), unit.Angle(s[2])
	if o.degrees {
		fmt.Fprintf(w, "%.9f %.9f %.9f\n", s[0], ra.Deg(), dec.Deg())
		return
	}
	fmt.Fprintf(w, "%.9f %.12f %.12f\n", s[0], ra.Rad(), dec.Rad())
}

func printMatrix(w io.Writer, name string, m vecmath.Matrix3) {
	fmt.Fprintf(w, "%s:\n", name)
	for _, row := range m {
		fmt.Fprintf(w, "  % .15f % .15f % .15f\n", row[0], row[1], row[2])
	}
}

func newConvertCmd(opts *options, direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   direction + " x y z [x y z ...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			positions, err := parseVectors(args)
			if err != nil {
				return err
			}
			ep, err := opts.parseEpoch()
			if err != nil {
				return err
			}
			conv, err := opts.converter()
			if err != nil {
				return err
			}

			var out []vecmath.Vector3
			if direction == "fixed" {
				out, err = conv.FixedFromInertial(ep, positions...)
			} else {
				out, err = conv.InertialFromFixed(ep, positions...)
			}
			if err != nil {
				return err
			}
			for _, v := range out {
				printVector(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}

func newSphericalCmd(opts *options) *cobra.Command {
	var inverse bool

	cmd := &cobra.Command{
		Use:   "spherical x y z [x y z ...]",
		Short: "Convert Cartesian positions to range, right ascension, declination",
		RunE: func(cmd *cobra.Command, args []string) error {
			positions, err := parseVectors(args)
			if err != nil {
				return err
			}

			if inverse {
				for _, s := range positions {
					if opts.degrees {
						s[1], s[2] = unit.AngleFromDeg(s[1]).Rad(), unit.AngleFromDeg(s[2]).Rad()
					}
					printVector(cmd.OutOrStdout(), frames.CartesianFromSpherical(s))
				}
				return nil
			}

			conv, err := opts.converter()
			if err != nil {
				return err
			}
			out, err := conv.Spherical(positions...)
			if err != nil {
				return err
			}
			for _, s := range out {
				opts.printSpherical(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&inverse, "inverse", false, "Read range, right ascension, declination and print Cartesian")

	return cmd
}

func newMatricesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "matrices",
		Short: "Print the precession, nutation and rotation matrices for an epoch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ep, err := opts.parseEpoch()
			if err != nil {
				return err
			}
			conv, err := opts.converter()
			if err != nil {
				return err
			}
			t, err := conv.Transform(ep)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "epoch: %s\n", ep)
			fmt.Fprintf(w, "days past J2000: %.9f\n", ep.DaysPastJ2000())
			fmt.Fprintf(w, "obliquity: %.15f\n", frames.Obliquity(ep))
			fmt.Fprintf(w, "gmst: %.15f\n", ep.GMST())
			fmt.Fprintf(w, "gast: %.15f\n", frames.GAST(ep))
			printMatrix(w, "precession", t.Precession)
			printMatrix(w, "nutation", t.Nutation)
			printMatrix(w, "rotation", t.Rotation)
			return nil
		},
	}
}

func newEphemerisCmd(opts *options) *cobra.Command {
	var tlePath string
	var noradID int

	cmd := &cobra.Command{
		Use:   "ephemeris",
		Short: "Propagate a satellite from a TLE file and print its state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ep, err := opts.parseEpoch()
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			ds, err := tle.Load(ctx, tlePath, logger)
			if err != nil {
				return err
			}
			catalog := tle.NewCatalog()
			catalog.Set(ds)

			conv, err := opts.converter()
			if err != nil {
				return err
			}
			svc := propagation.NewService(catalog, conv, propagation.Config{Workers: 1}, logger)

			st, err := svc.StateAt(ctx, noradID, ep.Time())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "satellite: %s (%d)\n", st.Name, st.NORADID)
			fmt.Fprintf(w, "epoch: %s\n", st.Epoch.Format(time.RFC3339))
			fmt.Fprint(w, "ecf position: ")
			printVector(w, st.Fixed.Position)
			fmt.Fprint(w, "ecf velocity: ")
			printVector(w, st.Fixed.Velocity)
			fmt.Fprint(w, "eci position: ")
			printVector(w, st.Inertial)
			fmt.Fprint(w, "spherical: ")
			opts.printSpherical(w, st.Spherical)
			fmt.Fprintf(w, "geodetic: %.6f %.6f %.3f\n",
				st.Geodetic.Latitude.Deg(), st.Geodetic.Longitude.Deg(), st.Geodetic.AltKm)
			return nil
		},
	}
	cmd.Flags().StringVar(&tlePath, "tle", "", "TLE file path or http(s) URL")
	cmd.Flags().IntVar(&noradID, "norad", 0, "NORAD catalog number")
	cmd.MarkFlagRequired("tle")
	cmd.MarkFlagRequired("norad")

	return cmd
}
