// Command liifit fits laser-induced incandescence traces with a
// heat-transfer model, simulates synthetic traces and inspects saved runs.
//
//	liifit --config run.yaml sim --out signals.yaml --points 4 --noise 5
//	liifit --config run.yaml fit --signals signals.yaml --out run.yaml.zst
//	liifit show run.yaml.zst
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
