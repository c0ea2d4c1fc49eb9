package common

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"
)

const JSONOutputFlag = "json"

type ICommandResult interface {
	GetOutput() string
}

type OutputFormatter interface {
	SetError(err error)
	SetCommandResult(result ICommandResult)
	WriteOutput()
}

// InitializeOutputter returns json formatter when --json flag is set
func InitializeOutputter(cmd *cobra.Command) OutputFormatter {
	if shouldOutputJSON(cmd) {
		return &jsonOutput{}
	}

	return &cliOutput{}
}

func shouldOutputJSON(cmd *cobra.Command) bool {
	flag := cmd.Flag(JSONOutputFlag)

	return flag != nil && flag.Changed
}

type commonOutputFormatter struct {
	errorOutput   error
	commandOutput ICommandResult
}

func (c *commonOutputFormatter) SetError(err error) {
	c.errorOutput = err
}

func (c *commonOutputFormatter) SetCommandResult(result ICommandResult) {
	c.commandOutput = result
}

type cliOutput struct {
	commonOutputFormatter
}

func (cli *cliOutput) WriteOutput() {
	if cli.errorOutput != nil {
		_, _ = fmt.Fprintln(os.Stderr, cli.errorOutput.Error())

		return
	}

	if cli.commandOutput != nil {
		_, _ = fmt.Fprintln(os.Stdout, cli.commandOutput.GetOutput())
	}
}

type jsonOutput struct {
	commonOutputFormatter
}

func (jo *jsonOutput) WriteOutput() {
	var (
		bytes []byte
		err   error
	)

	if jo.errorOutput != nil {
		bytes, err = json.Marshal(map[string]string{"err": jo.errorOutput.Error()})
	} else {
		bytes, err = json.Marshal(jo.commandOutput)
	}

	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())

		return
	}

	_, _ = fmt.Fprintln(os.Stdout, string(bytes))
}

// FormatKV renders "key|value" rows as aligned columns
func FormatKV(rows []string) string {
	config := columnize.DefaultConfig()
	config.Delim = "|"
	config.Glue = " = "

	return columnize.Format(rows, config)
}
