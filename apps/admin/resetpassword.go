package main

import (
	"strings"

	"github.com/mustangstride/stride/core"
	"github.com/mustangstride/stride/core/study"
)

// resetPassword replaces the credential of the first participant whose name
// matches case-insensitively, the same resolution rule login uses.
func (cli *commandLine) resetPassword(name, pwd string) error {
	name = core.CleanString(name, true /* lower */)
	for _, usr := range cli.svc.Store().Users() {
		if strings.ToLower(strings.TrimSpace(usr.Name)) == name {
			return cli.svc.ResetPassword(usr.ID, pwd)
		}
	}
	return study.ErrNotFound
}
