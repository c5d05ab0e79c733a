// cmd/tools/assess/main.go
//
// assess scores one candidate, or ranks several, from a JSON or YAML file
// without a Zeebe broker. It is what the training office runs to check a
// sheet by hand.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"operator-assessment-workers/internal/assessment"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("assess", flag.ContinueOnError)
	fs.SetOutput(out)
	input := fs.String("input", "-", "Candidate file (JSON or YAML), - for stdin")
	scaleName := fs.String("scale", assessment.ScaleWeighted, "Scoring scale: weighted or flat")
	allowance := fs.Float64("allowance", 0, "Allowance percent added to the average cycle time")
	floor := fs.Float64("floor", -1, "Quality floor override, negative keeps the scale default")
	asJSON := fs.Bool("json", false, "Print results as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	scale, err := assessment.ScaleByName(*scaleName)
	if err != nil {
		return err
	}
	opts := []assessment.Option{assessment.WithAllowancePercent(*allowance)}
	if *floor >= 0 {
		opts = append(opts, assessment.WithQualityFloor(*floor))
	}
	engine := assessment.NewEngine(scale, opts...)

	data, err := readInput(*input, stdin)
	if err != nil {
		return err
	}
	inputs, err := decodeInputs(data)
	if err != nil {
		return err
	}

	results := make([]*assessment.Result, 0, len(inputs))
	for i, in := range inputs {
		res, err := engine.Compute(in)
		if err != nil {
			return fmt.Errorf("candidate %d (%s): %w", i+1, in.CandidateID, err)
		}
		results = append(results, res)
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return enc.Encode(results[0])
		}
		return enc.Encode(assessment.Rank(results))
	}

	for _, res := range results {
		printSheet(out, res)
	}
	if len(results) > 1 {
		printRanking(out, assessment.Rank(results))
	}
	return nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// decodeInputs accepts one candidate or a list of them. YAML is converted
// through JSON so the engine's json tags apply to both formats.
func decodeInputs(data []byte) ([]assessment.Input, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("input is empty")
	}

	if data[0] != '{' && data[0] != '[' {
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		data = converted
	}

	if data[0] == '[' {
		var many []assessment.Input
		if err := json.Unmarshal(data, &many); err != nil {
			return nil, fmt.Errorf("decode input: %w", err)
		}
		if len(many) == 0 {
			return nil, fmt.Errorf("input lists no candidates")
		}
		return many, nil
	}

	var one assessment.Input
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return []assessment.Input{one}, nil
}

func printSheet(out io.Writer, res *assessment.Result) {
	id := res.CandidateID
	if id == "" {
		id = "(unnamed)"
	}
	fmt.Fprintf(out, "Candidate %s, %s scale\n\n", id, res.Scale)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MACHINE\tPROCESS\tSMV\tAVG CYCLE\tTARGET\tCAPACITY\tPERF %\tMARKS")
	for _, p := range res.Processes {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			p.MachineType, p.ProcessName, p.SMV, p.AvgCycleTime, p.Target, p.Capacity, p.Performance, p.PracticalMarks)
	}
	_ = tw.Flush()

	s := res.Scores
	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Machine\t%.2f\n", s.Machine)
	fmt.Fprintf(tw, "DOP\t%.2f\n", s.DOP)
	fmt.Fprintf(tw, "Practical\t%.2f\n", s.Practical)
	fmt.Fprintf(tw, "Quality\t%.2f\n", s.Quality)
	fmt.Fprintf(tw, "Education\t%.2f\n", s.Education)
	if s.Attitude != nil {
		fmt.Fprintf(tw, "Attitude\t%.2f\n", *s.Attitude)
	}
	fmt.Fprintf(tw, "Total\t%.2f\n", s.Total)
	_ = tw.Flush()

	fmt.Fprintf(out, "\nBase:  %s\n", formatAssessment(res.BaseAssessment))
	fmt.Fprintf(out, "Final: %s\n", formatAssessment(res.FinalAssessment))
	if len(res.Overrides) > 0 {
		fmt.Fprintf(out, "Overrides: %s\n", strings.Join(res.Overrides, ", "))
	}
	if res.QualityFloored {
		fmt.Fprintln(out, "Quality below floor: grade capped")
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "Warning [%s] process %d: %s\n", w.Code, w.ProcessIndex, w.Message)
	}
	fmt.Fprintln(out)
}

func printRanking(out io.Writer, ranked []assessment.Ranked) {
	fmt.Fprintln(out, "Ranking")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCANDIDATE\tTOTAL\tGRADE\tLEVEL\tDESIGNATION")
	for _, r := range ranked {
		pos := fmt.Sprint(r.Position)
		if r.Tied {
			pos += "="
		}
		fa := r.Result.FinalAssessment
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\t%s\n", pos, r.Result.CandidateID, r.Result.Scores.Total, fa.Grade, fa.Level, fa.Designation)
	}
	_ = tw.Flush()
}

func formatAssessment(a assessment.Assessment) string {
	return fmt.Sprintf("%s / %s / %s", a.Grade, a.Level, a.Designation)
}
