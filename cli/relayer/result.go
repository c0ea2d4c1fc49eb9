package clirelayer

import (
	"bytes"
	"fmt"

	"github.com/CultureBridge/bridge-relayer/common"
)

type CmdResult struct {
	config string
}

func (r CmdResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[Relayer stopped]\n")
	buffer.WriteString(common.FormatKV([]string{
		fmt.Sprintf("Config|%s", r.config),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
