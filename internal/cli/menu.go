package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/anxiety-fuzzy-diagnosis/internal/batch"
	"github.com/anxiety-fuzzy-diagnosis/internal/domain"
	"github.com/anxiety-fuzzy-diagnosis/pkg/fuzzy"
)

// readLine prompts and returns the trimmed answer. A final line without a newline is
// still returned; io.EOF is only reported once nothing is left.
func (c *CLI) readLine(prompt string) (string, error) {
	if prompt != "" {
		c.printf("%s", prompt)
	}
	line, err := c.reader.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// runMenu runs the interactive main menu until the user exits or input ends.
func (c *CLI) runMenu(ctx context.Context) error {
	for {
		c.println()
		c.println("#===#==#==#==#==#==#==#==#==#==#==#==#===#")
		c.println("|        Anxiety Diagnosis System        |")
		c.println("#===#==#==#==#==#==#==#==#==#==#==#==#===#")
		c.println("|          1. Manual entry               |")
		c.println("|          2. Run test cases             |")
		c.println("|          3. Exit                       |")
		c.println("#===#==#==#==#==#==#==#==#==#==#==#==#===#")

		choice, err := c.readLine("\nChoose an option: ")
		if err != nil {
			if isQuit(err) {
				return nil
			}
			return err
		}

		switch choice {
		case "1":
			if err := c.methodSubmenu(); err != nil {
				return quietEOF(err)
			}
		case "2":
			if err := c.interactiveCases(ctx); err != nil {
				return quietEOF(err)
			}
		case "3":
			c.println("Exiting.")
			return nil
		default:
			c.println("Invalid option. Please choose a valid option.")
		}
	}
}

// methodSubmenu lets the user pick a defuzzification method before manual entry.
func (c *CLI) methodSubmenu() error {
	methods := fuzzy.Methods()
	for {
		c.println()
		c.println("#===#==#==#==#==#==#==#==#==#==#==#==#===#")
		c.println("|    Submenu - Defuzzification Methods   |")
		c.println("#===#==#==#==#==#==#==#==#==#==#==#==#===#")
		c.println("|         1. Centroid                    |")
		c.println("|         2. Bisector                    |")
		c.println("|         3. MOM (Mean of Maximum)       |")
		c.println("|         4. SOM (Smallest of Maximum)   |")
		c.println("|         5. LOM (Largest of Maximum)    |")
		c.println("|         6. Back to main menu           |")
		c.println("#===#==#==#==#==#==#==#==#==#==#==#==#===#")

		choice, err := c.readLine("\nChoose an option: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1", "2", "3", "4", "5":
			idx := int(choice[0] - '1')
			if err := c.manualEntry(methods[idx].String()); err != nil {
				return err
			}
		case "6":
			return nil
		default:
			c.println("Invalid option. Please choose a valid option.")
		}
	}
}

// manualEntry prompts for the four readings and prints the diagnosis.
// Invalid readings are reported and the user returns to the submenu.
func (c *CLI) manualEntry(method string) error {
	prompts := []struct {
		variable string
		prompt   string
	}{
		{domain.VarHeartRate, "Enter heart rate (60-120 bpm): "},
		{domain.VarWorryLevel, "Enter worry level (0-10): "},
		{domain.VarSleepQuality, "Enter sleep quality (0-10, where 10 is best): "},
		{domain.VarMuscleTension, "Enter muscle tension (0-10): "},
	}

	values := make(map[string]float64, len(prompts))
	for _, p := range prompts {
		raw, err := c.readLine(p.prompt)
		if err != nil {
			return err
		}
		x, err := parseReading(p.variable, raw)
		if err != nil {
			c.println("Invalid input. Please enter numeric values.")
			c.logger.WithError(err).Debug("Rejected manual entry")
			return nil
		}
		values[p.variable] = x
	}

	input := domain.CrispInput{
		HeartRate:     values[domain.VarHeartRate],
		WorryLevel:    values[domain.VarWorryLevel],
		SleepQuality:  values[domain.VarSleepQuality],
		MuscleTension: values[domain.VarMuscleTension],
	}
	result, err := c.service.DiagnoseWith(input, method)
	if err != nil {
		c.printf("Diagnosis failed: %v\n", err)
		return nil
	}
	c.printResult(result, true)
	return nil
}

// interactiveCases walks through the labelled cases one at a time, showing every method.
func (c *CLI) interactiveCases(ctx context.Context) error {
	cases, err := c.loadCases("")
	if err != nil {
		c.printf("Could not load test cases: %v\n", err)
		return nil
	}

	runner := batch.NewRunner(c.service, c.logger, c.config.Batch.Methods)
	c.println("\nRunning test cases...")
	for i, tc := range cases {
		if err := ctx.Err(); err != nil {
			return err
		}

		in := tc.Input
		c.printf("\nCase %d (%s): HR=%g, Worry=%g, Sleep=%g, Tension=%g, expected %s\n",
			i+1, tc.Name, in.HeartRate, in.WorryLevel, in.SleepQuality, in.MuscleTension, tc.Expected)

		result, err := runner.Run(ctx, []domain.TestCase{tc})
		if err != nil {
			return err
		}
		for _, o := range result.Outcomes {
			if o.Error != "" {
				c.printf("  Method %s: error: %s\n", o.Method, o.Error)
				continue
			}
			mark := "match"
			if !o.Passed {
				mark = "mismatch"
			}
			c.printf("  Method %s: %s (score %.2f, %s)\n", o.Method, o.Actual.Description(), o.Score, mark)
		}

		if i == len(cases)-1 {
			break
		}
		for {
			answer, err := c.readLine("\nPress ENTER to continue to the next case or 'q' to quit: ")
			if err != nil {
				return err
			}
			if strings.EqualFold(answer, "q") {
				return nil
			}
			if answer == "" {
				break
			}
			c.println("Invalid option. Press ENTER to continue or 'q' to quit.")
		}
	}

	c.println("All test cases have been run.")
	return nil
}

// quietEOF treats running out of input as a normal exit
func quietEOF(err error) error {
	if isQuit(err) {
		return nil
	}
	return fmt.Errorf("interactive session failed: %w", err)
}
