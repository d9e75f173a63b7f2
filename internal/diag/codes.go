package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// синтаксис
	SynParseError Code = 1001

	// разрешение имён
	SemUnresolvedReference Code = 2001

	// модель пакетов и граф
	PrjDuplicatePackage Code = 3002
	PrjSelfImport       Code = 3003

	// движок правил
	EngPassInternalError Code = 4001

	// мёртвый код
	DcUnusedVariable Code = 5001
	DcUnusedImport   Code = 5002
	DcDeadCode       Code = 5003

	// архитектура
	ArcCircularDependency Code = 6001
	ArcBoundaryViolation  Code = 6002

	// стиль
	StyLineTooLong        Code = 7001
	StyNamingConvention   Code = 7002
	StyControlSpacing     Code = 7003
	StySpaceIndent        Code = 7004
	StyTrailingWhitespace Code = 7005

	IOError Code = 8001

	FixConflict Code = 9001
)

var codeDescription = map[Code]string{
	UnknownCode:            "Unknown",
	SynParseError:          "ParseError",
	SemUnresolvedReference: "UnresolvedReference",
	PrjDuplicatePackage:    "DuplicatePackage",
	PrjSelfImport:          "SelfImport",
	EngPassInternalError:   "PassInternalError",
	DcUnusedVariable:       "UnusedVariable",
	DcUnusedImport:         "UnusedImport",
	DcDeadCode:             "DeadCode",
	ArcCircularDependency:  "CircularDependency",
	ArcBoundaryViolation:   "BoundaryViolation",
	StyLineTooLong:         "LineTooLong",
	StyNamingConvention:    "NamingConvention",
	StyControlSpacing:      "ControlSpacing",
	StySpaceIndent:         "SpaceIndent",
	StyTrailingWhitespace:  "TrailingWhitespace",
	IOError:                "IOError",
	FixConflict:            "FixConflict",
}

// ID returns the stable textual identifier, e.g. "DC5001".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("ENG%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("DC%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("ARC%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("STY%04d", ic)
	case ic >= 8000 && ic < 9000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("FIX%04d", ic)
	}
	return "E0000"
}

// Title returns the taxonomy name, e.g. "UnusedVariable".
func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
