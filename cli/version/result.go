package cliversion

import (
	"bytes"
	"fmt"

	"github.com/CultureBridge/bridge-relayer/common"
	"github.com/CultureBridge/bridge-relayer/versioning"
)

type versionCmdResult struct {
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	BuildTime string `json:"buildTime"`
}

func newVersionCmdResult() *versionCmdResult {
	return &versionCmdResult{
		Commit:    versioning.Commit,
		Branch:    versioning.Branch,
		BuildTime: versioning.BuildTime,
	}
}

func (r *versionCmdResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString(common.FormatKV([]string{
		fmt.Sprintf("Commit|%s", r.Commit),
		fmt.Sprintf("Branch|%s", r.Branch),
		fmt.Sprintf("Build time|%s", r.BuildTime),
	}))

	return buffer.String()
}
