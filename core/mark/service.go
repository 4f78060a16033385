package mark

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/assignment"
	"github.com/trezcool/madrasa/core/gradingscale"
	"github.com/trezcool/madrasa/core/registration"
	"github.com/trezcool/madrasa/core/schoolyear"
	"github.com/trezcool/madrasa/core/user"
)

var (
	ErrNotFound             = core.NewNotFoundError("marks not found")
	ErrExists               = core.NewConflictError("these marks have already been submitted")
	ErrUnauthorized         = core.NewUnauthorizedError("teacher is not authorized to access these marks")
	ErrStudentNotRegistered = core.NewNotFoundError("student is not registered in this grade")
	ErrHasFinalMark         = core.NewInvalidError("cannot delete: there is a final mark depending on these marks")
	ErrPaginationRequired   = core.NewInvalidError("page and limit are required")
)

type Repository interface {
	Get(ctx context.Context, key Key) (Mark, error)
	Create(ctx context.Context, m Mark) (Mark, error)
	Update(ctx context.Context, m Mark) (Mark, error)
	Delete(ctx context.Context, key Key) error
	// Report returns monthly report rows ordered by student name, descending.
	Report(ctx context.Context, f ReportFilter, q core.PageQuery) ([]Report, int, error)

	GetFinal(ctx context.Context, key FinalKey) (FinalMark, error)
	CreateFinal(ctx context.Context, fm FinalMark) (FinalMark, error)
	UpdateFinal(ctx context.Context, fm FinalMark) (FinalMark, error)
	DeleteFinal(ctx context.Context, key FinalKey) error
	// FinalReport returns final report rows ordered by student name.
	FinalReport(ctx context.Context, f FinalReportFilter, q core.PageQuery) ([]FinalReport, int, error)
}

type Service struct {
	repo    Repository
	regRepo registration.Repository
	asgSvc  *assignment.Service
	sySvc   *schoolyear.Service
	gsRepo  gradingscale.Repository
}

func NewService(
	repo Repository,
	regRepo registration.Repository,
	asgSvc *assignment.Service,
	sySvc *schoolyear.Service,
	gsRepo gradingscale.Repository,
) *Service {
	return &Service{repo: repo, regRepo: regRepo, asgSvc: asgSvc, sySvc: sySvc, gsRepo: gsRepo}
}

// authorize returns the current school year if the teacher teaches the subject in the grade during it.
func (svc *Service) authorize(ctx context.Context, tchr user.User, subjectID, gradeID int) (schoolyear.SchoolYear, error) {
	sy, err := svc.sySvc.RequireCurrent(ctx)
	if err != nil {
		return schoolyear.SchoolYear{}, err
	}
	ok, err := svc.asgSvc.IsAssigned(ctx, assignment.Assignment{
		TeacherID:    tchr.ID,
		GradeID:      gradeID,
		SubjectID:    subjectID,
		SchoolYearID: sy.ID,
	})
	if err != nil {
		return schoolyear.SchoolYear{}, errors.Wrap(err, "checking teacher assignment")
	}
	if !ok {
		return schoolyear.SchoolYear{}, ErrUnauthorized
	}
	return sy, nil
}

func (svc *Service) scales(ctx context.Context) ([]gradingscale.GradingScale, error) {
	scales, _, err := svc.gsRepo.List(ctx, core.PageQuery{})
	if err != nil {
		return nil, errors.Wrap(err, "listing grading scales")
	}
	return scales, nil
}

// grade labels the rows with their grading scale.
func (svc *Service) grade(ctx context.Context, reports []Report, finals []FinalReport) error {
	if len(reports) == 0 && len(finals) == 0 {
		return nil
	}
	scales, err := svc.scales(ctx)
	if err != nil {
		return err
	}
	// scales are percentages: monthly rows by their total, final rows by their outcome
	for i := range reports {
		reports[i].Grading = gradingscale.Label(scales, reports[i].Total)
	}
	for i := range finals {
		finals[i].Grading = gradingscale.Label(scales, finals[i].FinalOutcome)
	}
	return nil
}

func (svc *Service) checkRegistration(ctx context.Context, studentID, gradeID, schoolYearID int) error {
	reg, err := svc.regRepo.Get(ctx, studentID, schoolYearID)
	if err != nil {
		if errors.Cause(err) == registration.ErrNotFound {
			return ErrStudentNotRegistered
		}
		return errors.Wrap(err, "getting student registration")
	}
	if reg.GradeID != gradeID {
		return ErrStudentNotRegistered
	}
	return nil
}

// List returns a page of the current school year monthly marks of a grade in a subject.
func (svc *Service) List(ctx context.Context, tchr user.User, f ReportFilter, q core.PageQuery) ([]Report, int, error) {
	if !q.IsPaginated() {
		return nil, 0, ErrPaginationRequired
	}
	sy, err := svc.authorize(ctx, tchr, f.SubjectID, f.GradeID)
	if err != nil {
		return nil, 0, err
	}
	f.SchoolYearID = sy.ID
	reports, total, err := svc.repo.Report(ctx, f, q)
	if err != nil {
		return nil, 0, errors.Wrap(err, "listing marks")
	}
	return reports, total, svc.grade(ctx, reports, nil)
}

func (svc *Service) report(ctx context.Context, key Key) (Report, error) {
	reports, _, err := svc.repo.Report(ctx, ReportFilter{
		SchoolYearID: key.SchoolYearID,
		GradeID:      key.GradeID,
		SubjectID:    key.SubjectID,
		Month:        key.Month,
		Semester:     key.Semester,
		StudentID:    key.StudentID,
	}, core.PageQuery{})
	if err != nil {
		return Report{}, errors.Wrap(err, "getting marks")
	}
	if len(reports) == 0 {
		return Report{}, ErrNotFound
	}
	return reports[0], svc.grade(ctx, reports[:1], nil)
}

func (svc *Service) Get(ctx context.Context, tchr user.User, key Key) (Report, error) {
	sy, err := svc.authorize(ctx, tchr, key.SubjectID, key.GradeID)
	if err != nil {
		return Report{}, err
	}
	key.SchoolYearID = sy.ID
	return svc.report(ctx, key)
}

func (svc *Service) Create(ctx context.Context, tchr user.User, in Input) (Report, error) {
	sy, err := svc.authorize(ctx, tchr, in.SubjectID, in.GradeID)
	if err != nil {
		return Report{}, err
	}
	in.SchoolYearID = sy.ID
	if err = svc.checkRegistration(ctx, in.StudentID, in.GradeID, sy.ID); err != nil {
		return Report{}, err
	}

	switch _, err = svc.repo.Get(ctx, in.Key); {
	case err == nil:
		return Report{}, ErrExists
	case errors.Cause(err) != ErrNotFound:
		return Report{}, errors.Wrap(err, "getting marks")
	}

	m := Mark{Key: in.Key}
	in.Scores.apply(&m)
	if _, err = svc.repo.Create(ctx, m); err != nil {
		return Report{}, errors.Wrap(err, "inserting marks")
	}
	return svc.report(ctx, in.Key)
}

func (svc *Service) Update(ctx context.Context, tchr user.User, key Key, scores Scores) (Report, error) {
	sy, err := svc.authorize(ctx, tchr, key.SubjectID, key.GradeID)
	if err != nil {
		return Report{}, err
	}
	key.SchoolYearID = sy.ID
	m, err := svc.repo.Get(ctx, key)
	if err != nil {
		return Report{}, err
	}
	scores.apply(&m)
	if _, err = svc.repo.Update(ctx, m); err != nil {
		return Report{}, errors.Wrap(err, "updating marks")
	}
	return svc.report(ctx, key)
}

func (svc *Service) Delete(ctx context.Context, tchr user.User, key Key) error {
	sy, err := svc.authorize(ctx, tchr, key.SubjectID, key.GradeID)
	if err != nil {
		return err
	}
	key.SchoolYearID = sy.ID
	if _, err = svc.repo.Get(ctx, key); err != nil {
		return err
	}

	switch _, err = svc.repo.GetFinal(ctx, FinalKey{
		StudentID:    key.StudentID,
		SubjectID:    key.SubjectID,
		SchoolYearID: sy.ID,
		Semester:     key.Semester,
	}); {
	case err == nil:
		return ErrHasFinalMark
	case errors.Cause(err) != ErrNotFound:
		return errors.Wrap(err, "getting final mark")
	}
	return svc.repo.Delete(ctx, key)
}

// ListFinal returns a page of the current school year final marks of a grade in a subject.
func (svc *Service) ListFinal(ctx context.Context, tchr user.User, f FinalReportFilter, q core.PageQuery) ([]FinalReport, int, error) {
	if !q.IsPaginated() {
		return nil, 0, ErrPaginationRequired
	}
	sy, err := svc.authorize(ctx, tchr, f.SubjectID, f.GradeID)
	if err != nil {
		return nil, 0, err
	}
	f.SchoolYearID = sy.ID
	finals, total, err := svc.repo.FinalReport(ctx, f, q)
	if err != nil {
		return nil, 0, errors.Wrap(err, "listing final marks")
	}
	return finals, total, svc.grade(ctx, nil, finals)
}

func (svc *Service) finalReport(ctx context.Context, key FinalKey) (FinalReport, error) {
	finals, _, err := svc.repo.FinalReport(ctx, FinalReportFilter{
		SchoolYearID: key.SchoolYearID,
		SubjectID:    key.SubjectID,
		Semester:     key.Semester,
		StudentID:    key.StudentID,
	}, core.PageQuery{})
	if err != nil {
		return FinalReport{}, errors.Wrap(err, "getting final mark")
	}
	if len(finals) == 0 {
		return FinalReport{}, ErrNotFound
	}
	return finals[0], svc.grade(ctx, nil, finals[:1])
}

// GetFinal returns a final mark. gradeID only serves the permission check.
func (svc *Service) GetFinal(ctx context.Context, tchr user.User, key FinalKey, gradeID int) (FinalReport, error) {
	sy, err := svc.authorize(ctx, tchr, key.SubjectID, gradeID)
	if err != nil {
		return FinalReport{}, err
	}
	key.SchoolYearID = sy.ID
	return svc.finalReport(ctx, key)
}

func (svc *Service) CreateFinal(ctx context.Context, tchr user.User, in FinalInput) (FinalReport, error) {
	sy, err := svc.authorize(ctx, tchr, in.SubjectID, in.GradeID)
	if err != nil {
		return FinalReport{}, err
	}
	in.SchoolYearID = sy.ID
	if err = svc.checkRegistration(ctx, in.StudentID, in.GradeID, sy.ID); err != nil {
		return FinalReport{}, err
	}

	switch _, err = svc.repo.GetFinal(ctx, in.FinalKey); {
	case err == nil:
		return FinalReport{}, ErrExists
	case errors.Cause(err) != ErrNotFound:
		return FinalReport{}, errors.Wrap(err, "getting final mark")
	}

	if _, err = svc.repo.CreateFinal(ctx, FinalMark{FinalKey: in.FinalKey, Exam: *in.Exam}); err != nil {
		return FinalReport{}, errors.Wrap(err, "inserting final mark")
	}
	return svc.finalReport(ctx, in.FinalKey)
}

func (svc *Service) UpdateFinal(ctx context.Context, tchr user.User, key FinalKey, gradeID int, scores FinalScores) (FinalReport, error) {
	sy, err := svc.authorize(ctx, tchr, key.SubjectID, gradeID)
	if err != nil {
		return FinalReport{}, err
	}
	key.SchoolYearID = sy.ID
	fm, err := svc.repo.GetFinal(ctx, key)
	if err != nil {
		return FinalReport{}, err
	}
	fm.Exam = *scores.Exam
	if _, err = svc.repo.UpdateFinal(ctx, fm); err != nil {
		return FinalReport{}, errors.Wrap(err, "updating final mark")
	}
	return svc.finalReport(ctx, key)
}

func (svc *Service) DeleteFinal(ctx context.Context, tchr user.User, key FinalKey, gradeID int) error {
	sy, err := svc.authorize(ctx, tchr, key.SubjectID, gradeID)
	if err != nil {
		return err
	}
	key.SchoolYearID = sy.ID
	if _, err = svc.repo.GetFinal(ctx, key); err != nil {
		return err
	}
	return svc.repo.DeleteFinal(ctx, key)
}

// StudentMarks returns the marks of a student in a subject during a school year.
// month and semester are optional filters, the latter applying to final marks too.
func (svc *Service) StudentMarks(ctx context.Context, studentID, subjectID, schoolYearID, month, semester int) (StudentMarks, error) {
	reports, _, err := svc.repo.Report(ctx, ReportFilter{
		SchoolYearID: schoolYearID,
		SubjectID:    subjectID,
		Month:        month,
		Semester:     semester,
		StudentID:    studentID,
	}, core.PageQuery{})
	if err != nil {
		return StudentMarks{}, errors.Wrap(err, "listing student marks")
	}
	finals, _, err := svc.repo.FinalReport(ctx, FinalReportFilter{
		SchoolYearID: schoolYearID,
		SubjectID:    subjectID,
		Semester:     semester,
		StudentID:    studentID,
	}, core.PageQuery{})
	if err != nil {
		return StudentMarks{}, errors.Wrap(err, "listing student final marks")
	}
	if reports == nil {
		reports = []Report{}
	}
	if finals == nil {
		finals = []FinalReport{}
	}
	return StudentMarks{MonthlyMarks: reports, FinalMarks: finals}, svc.grade(ctx, reports, finals)
}
