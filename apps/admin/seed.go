package main

import (
	"errors"

	"github.com/mustangstride/stride/core/study"
)

var errStoreNotEmpty = errors.New("store already holds users; refusing to seed")

// seed loads the initial cohorts into an empty store: one admin, one teacher
// and a couple of students per section.
func (cli *commandLine) seed() error {
	if len(cli.svc.Store().Users()) > 0 {
		return errStoreNotEmpty
	}

	seedUsers := []study.NewUser{
		{Name: "Research Admin", Password: "admin123", Role: study.RoleAdmin},
		{Name: "Maria Santos", Password: "teach123", Role: study.RoleTeacher, Section: study.SectionEinsteinG11, Subject: "Physics"},
		{Name: "Jose Rizal", Password: "teach123", Role: study.RoleTeacher, Section: study.SectionGalileiG12, Subject: "Research"},
		{Name: "Juan Dela Cruz", Password: "stride1", Role: study.RoleStudent, Section: study.SectionEinsteinG11},
		{Name: "Ana Reyes", Password: "stride2", Role: study.RoleStudent, Section: study.SectionEinsteinG11},
		{Name: "Pedro Penduko", Password: "stride3", Role: study.RoleStudent, Section: study.SectionGalileiG12},
		{Name: "Liza Soberano", Password: "stride4", Role: study.RoleStudent, Section: study.SectionGalileiG12},
	}
	for _, nu := range seedUsers {
		if _, err := cli.svc.RegisterUser(nu); err != nil {
			return err
		}
	}
	return nil
}
