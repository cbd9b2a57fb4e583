package pivot

import "github.com/dd0wney/cluso-takeoff/pkg/model"

// Category is the fixed work-category ordinal used to group pivot rows.
// The numeric order is the report's priority order.
type Category int

const (
	CategoryStraightLength Category = iota
	CategoryReducer
	CategoryTee
	CategoryCross
	CategoryElbow
	CategoryFlange
	CategoryGasket
	CategoryValve
	CategoryInstrument
	CategoryFastener
	CategoryOther
)

// String returns the report label of a category
func (c Category) String() string {
	switch c {
	case CategoryStraightLength:
		return "straight length"
	case CategoryReducer:
		return "reducer"
	case CategoryTee:
		return "tee"
	case CategoryCross:
		return "cross"
	case CategoryElbow:
		return "elbow"
	case CategoryFlange:
		return "flange"
	case CategoryGasket:
		return "gasket"
	case CategoryValve:
		return "valve"
	case CategoryInstrument:
		return "instrument"
	case CategoryFastener:
		return "fastener"
	default:
		return "other"
	}
}

// CategoryForClass maps a component class to its work category.
func CategoryForClass(class model.Class) Category {
	switch class {
	case model.ClassPipe:
		return CategoryStraightLength
	case model.ClassReducer:
		return CategoryReducer
	case model.ClassTee, model.ClassOlet:
		return CategoryTee
	case model.ClassCross:
		return CategoryCross
	case model.ClassElbow:
		return CategoryElbow
	case model.ClassFlange, model.ClassCoupling:
		return CategoryFlange
	case model.ClassGasket:
		return CategoryGasket
	case model.ClassValve:
		return CategoryValve
	case model.ClassInstrument, model.ClassOrifice:
		return CategoryInstrument
	case model.ClassFastener:
		return CategoryFastener
	default:
		return CategoryOther
	}
}
