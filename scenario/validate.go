package scenario

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/warp/career-simulator/career"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their serialized names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		validate.RegisterStructValidation(scenarioStructLevel, Scenario{})
	})
	return validate
}

// scenarioStructLevel checks the rules that span fields.
func scenarioStructLevel(sl validator.StructLevel) {
	sc := sl.Current().Interface().(Scenario)

	if len(sc.GradeYears) != sc.Grades {
		sl.ReportError(sc.GradeYears, "grade_years", "GradeYears", "per_grade", fmt.Sprint(sc.Grades))
	}
	if sc.Allocation.Mode == string(career.ModeProportional) && len(sc.Allocation.BaseAmounts) != sc.Grades {
		sl.ReportError(sc.Allocation.BaseAmounts, "allocation.base_amounts", "BaseAmounts", "per_grade", fmt.Sprint(sc.Grades))
	}
	for _, a := range sc.Allocation.Amounts {
		if a.Grade > sc.Grades {
			sl.ReportError(a.Grade, "allocation.amounts", "Amounts", "grade_in_range", fmt.Sprint(sc.Grades))
			break
		}
	}
	for _, o := range sc.Overrides {
		if o.Grade > sc.Grades {
			sl.ReportError(o.Grade, "headcount_overrides", "Overrides", "grade_in_range", fmt.Sprint(sc.Grades))
			break
		}
	}

	// YAML accepts .inf and .nan; decimal cannot represent them.
	if !finite(sc.Allocation.GrowthRate) {
		sl.ReportError(sc.Allocation.GrowthRate, "allocation.growth_rate", "GrowthRate", "finite", "")
	}
	for i, b := range sc.Allocation.BaseAmounts {
		if !finite(b) {
			sl.ReportError(b, fmt.Sprintf("allocation.base_amounts[%d]", i), "BaseAmounts", "finite", "")
		}
	}
	for i, a := range sc.Allocation.Amounts {
		if !finite(a.Amount) {
			sl.ReportError(a.Amount, fmt.Sprintf("allocation.amounts[%d].amount", i), "Amount", "finite", "")
		}
	}

	seen := make(map[career.Cell]bool, len(sc.Allocation.Amounts))
	for _, a := range sc.Allocation.Amounts {
		cell := career.Cell{Grade: career.Grade(a.Grade), Level: career.Level(a.Level)}
		if seen[cell] {
			sl.ReportError(a, "allocation.amounts", "Amounts", "duplicate_cell", cell.String())
		}
		seen[cell] = true
	}
	seen = make(map[career.Cell]bool, len(sc.Overrides))
	for _, o := range sc.Overrides {
		cell := career.Cell{Grade: career.Grade(o.Grade), Level: career.Level(o.Level)}
		if seen[cell] {
			sl.ReportError(o, "headcount_overrides", "Overrides", "duplicate_cell", cell.String())
		}
		seen[cell] = true
	}
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Validate checks the scenario and returns every problem joined.
// Each problem is a *career.ConfigError.
func (sc Scenario) Validate() error {
	err := validatorInstance().Struct(sc)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, &career.ConfigError{
			Field:  fieldPath(fe),
			Reason: describe(fe),
		})
	}
	return errors.Join(errs...)
}

// fieldPath drops the root type name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "per_grade":
		return fmt.Sprintf("needs exactly one entry per grade (%s)", fe.Param())
	case "finite":
		return "must be a finite number"
	case "duplicate_cell":
		return fmt.Sprintf("lists %s more than once", fe.Param())
	case "grade_in_range":
		return fmt.Sprintf("references a grade above %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
