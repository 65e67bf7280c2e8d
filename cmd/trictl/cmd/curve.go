/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lkaino/cleanflight/servo"
)

var (
	curveThrustFactorFlag float64
	curveEveryFlag        int
)

func init() {
	RootCmd.AddCommand(curveCmd)
	curveCmd.Flags().Float64VarP(&curveThrustFactorFlag, "thrust-factor", "t", 0, "thrust factor to model, 0 means use the config")
	curveCmd.Flags().IntVarP(&curveEveryFlag, "every", "e", 5, "print every Nth curve point")
}

func printCurve(w io.Writer, g *servo.Geometry, every int) error {
	fmt.Fprintf(w, "thrust factor:   %.1f\n", g.ThrustFactor())
	fmt.Fprintf(w, "pitch zero:      %.2f deg\n", g.PitchZeroAngle()/10)
	fmt.Fprintf(w, "usable range:    %.1f .. %.1f deg\n", g.AngleAtMin()/10, g.AngleAtMax()/10)
	fmt.Fprintf(w, "linear range:    %.1f .. %.1f deg\n", g.AngleAtLinearMin()/10, g.AngleAtLinearMax()/10)
	fmt.Fprintf(w, "max yaw output:  %.0f\n", g.MaxYawOutput())

	if every < 1 {
		every = 1
	}
	table := tablewriter.NewWriter(w)
	table.Header("angle(deg)", "yaw force", "pitch correction")
	force, angles := g.Curve()
	for i := 0; i < len(force); i += every {
		err := table.Append([]string{
			fmt.Sprintf("%.1f", angles[i]/10),
			fmt.Sprintf("%.0f", force[i]),
			fmt.Sprintf("%.3f", servo.PitchCorrection(angles[i], g.ThrustFactor())),
		})
		if err != nil {
			return err
		}
	}
	return table.Render()
}

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Print the tail yaw force curve",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()

		cfg, err := loadConfig()
		if err != nil {
			log.Fatal(err)
		}
		tf := cfg.ThrustFactor()
		if curveThrustFactorFlag != 0 {
			tf = curveThrustFactorFlag
		}
		g := servo.NewGeometry(tf, cfg.Servo.MaxDeflection())
		if err := printCurve(os.Stdout, g, curveEveryFlag); err != nil {
			log.Fatal(err)
		}
	},
}
