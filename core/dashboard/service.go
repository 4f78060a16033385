package dashboard

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core/grade"
	"github.com/trezcool/madrasa/core/registration"
	"github.com/trezcool/madrasa/core/user"
)

// Stats are the figures shown on the home page.
type Stats struct {
	StudentCount     int `json:"studentCount"`
	MaleStudentCount int `json:"maleStudentCount"`
	TeacherCount     int `json:"teacherCount"`
	GradeCount       int `json:"gradeCount"`
}

type Service struct {
	usrSvc *user.Service
	grdSvc *grade.Service
	regSvc *registration.Service
}

func NewService(usrSvc *user.Service, grdSvc *grade.Service, regSvc *registration.Service) *Service {
	return &Service{usrSvc: usrSvc, grdSvc: grdSvc, regSvc: regSvc}
}

// Stats counts the students registered during the current school year (none without one),
// the teachers and the grades.
func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	var (
		stats Stats
		err   error
	)
	if stats.StudentCount, stats.MaleStudentCount, err = svc.regSvc.CountCurrent(ctx); err != nil {
		return Stats{}, errors.Wrap(err, "counting students")
	}
	if stats.TeacherCount, err = svc.usrSvc.Count(ctx, user.RoleTeacher); err != nil {
		return Stats{}, errors.Wrap(err, "counting teachers")
	}
	if stats.GradeCount, err = svc.grdSvc.Count(ctx); err != nil {
		return Stats{}, errors.Wrap(err, "counting grades")
	}
	return stats, nil
}
