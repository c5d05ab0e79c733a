// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"operator-assessment-workers/internal/common/errors"
	"operator-assessment-workers/internal/common/validation"
	"operator-assessment-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	if len(os.Args) < 2 {
		help(os.Stdout)
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ExitOnError)
		path := fs.String("path", defaultRegistryPath, "Path to registry file")
		_ = fs.Parse(args)

		reg, err := validateRegistry(*path)
		if err != nil {
			return fmt.Errorf("registry validation failed: %w", err)
		}
		fmt.Fprintf(out, "Registry validation passed. Found %d activities.\n", len(reg.Activities))
		return nil

	case "list":
		fs := flag.NewFlagSet("list", flag.ExitOnError)
		path := fs.String("path", defaultRegistryPath, "Path to registry file")
		_ = fs.Parse(args)

		reg, err := registry.LoadRegistry(*path)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		listActivities(reg, out)
		return nil

	case "check":
		fs := flag.NewFlagSet("check", flag.ExitOnError)
		path := fs.String("path", defaultRegistryPath, "Path to registry file")
		taskType := fs.String("taskType", "", "Task type whose input schema to check against")
		file := fs.String("file", "", "JSON file holding job variables")
		_ = fs.Parse(args)
		if *taskType == "" || *file == "" {
			fs.Usage()
			return fmt.Errorf("taskType and file are required for check")
		}

		res, err := checkVariables(*path, *taskType, *file)
		if err != nil {
			return err
		}
		if !res.Valid {
			for _, e := range res.Errors {
				fmt.Fprintf(out, "  %s: %s (%s)\n", e.Field, e.Message, e.Code)
			}
			return fmt.Errorf("%d schema violations", len(res.Errors))
		}
		fmt.Fprintln(out, "Variables match the input schema.")
		return nil

	case "update":
		fs := flag.NewFlagSet("update", flag.ExitOnError)
		path := fs.String("path", defaultRegistryPath, "Path to registry file")
		taskType := fs.String("taskType", "", "Task type to update")
		field := fs.String("field", "", "Field to update (version, description, timeout, retries)")
		value := fs.String("value", "", "New value for the field")
		_ = fs.Parse(args)
		if *taskType == "" || *field == "" || *value == "" {
			fs.Usage()
			return fmt.Errorf("taskType, field, and value are required for update")
		}

		if err := updateActivity(*path, *taskType, *field, *value); err != nil {
			return err
		}
		fmt.Fprintf(out, "Updated %s, field %s to %s\n", *taskType, *field, *value)
		return nil

	default:
		help(out)
		return nil
	}
}

// validateRegistry loads the registry, compiles every input schema and
// checks the declared error codes and timeouts.
func validateRegistry(path string) (*registry.ActivityRegistry, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	if len(reg.Activities) == 0 {
		return nil, fmt.Errorf("registry contains no activities")
	}

	for _, a := range reg.Activities {
		if a.DisplayName == "" {
			return nil, fmt.Errorf("activity %s missing required field: displayName", a.TaskType)
		}
		if _, err := time.ParseDuration(a.Timeout); err != nil {
			return nil, fmt.Errorf("activity %s has invalid timeout %q", a.TaskType, a.Timeout)
		}
		for _, code := range a.ErrorCodes {
			if !errors.IsKnownErrorCode(code) {
				return nil, fmt.Errorf("activity %s declares unknown error code %s", a.TaskType, code)
			}
		}
	}

	if _, err := validation.NewValidator(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func listActivities(reg *registry.ActivityRegistry, out io.Writer) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK TYPE\tCATEGORY\tTIMEOUT\tRETRIES\tERROR CODES")
	for _, a := range reg.Activities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", a.TaskType, a.Category, a.Timeout, a.Retries, len(a.ErrorCodes))
	}
	_ = tw.Flush()
}

func checkVariables(path, taskType, file string) (*validation.ValidationResult, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	if _, ok := reg.Find(taskType); !ok {
		return nil, fmt.Errorf("task type %s is not registered", taskType)
	}
	v, err := validation.NewValidator(reg)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return v.ValidateJSON(taskType, string(data))
}

func updateActivity(path, taskType, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	a, ok := reg.Find(taskType)
	if !ok {
		return fmt.Errorf("task type %s not found", taskType)
	}
	switch field {
	case "version":
		a.Version = value
	case "description":
		a.Description = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		a.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		a.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return saveRegistry(reg, path)
}

func saveRegistry(reg *registry.ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func help(out io.Writer) {
	fmt.Fprint(out, `
Usage: registry-updater <command> [flags]

Commands:
  validate  Check the registry, its schemas and error codes
  list      Print the registered task types
  check     Validate a job variables file against a task's input schema
  update    Update an activity's version, description, timeout or retries
  help      Show this help message

Examples:
  registry-updater validate -path configs/activity-registry.json
  registry-updater check -taskType compute-operator-assessment -file candidate.json
  registry-updater update -taskType store-assessment-result -field timeout -value 15s
`)
}
