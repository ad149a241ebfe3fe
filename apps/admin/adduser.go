package main

import (
	"github.com/mustangstride/stride/core/study"
)

// addUser registers a new participant through the same intake path the API
// uses, so defaults and validation match.
func (cli *commandLine) addUser(name, pwd, role, section, subject, email string) error {
	_, err := cli.svc.RegisterUser(study.NewUser{
		Name:     name,
		Password: pwd,
		Role:     role,
		Section:  section,
		Subject:  subject,
		Email:    email,
	})
	return err
}
