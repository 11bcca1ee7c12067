package ast

import (
	"strings"
	"unicode"
)

// Skeleton kinds shared by every provider.
var (
	KindProgram                 = Kind{"Program", CategoryStructure}
	KindProgramMetadata         = Kind{"ProgramMetadata", CategoryMetadata}
	KindActorDefinitionList     = Kind{"ActorDefinitionList", CategoryStructure}
	KindActorDefinition         = Kind{"ActorDefinition", CategoryStructure}
	KindActorMetadata           = Kind{"ActorMetadata", CategoryMetadata}
	KindDeclarationStmtList     = Kind{"DeclarationStmtList", CategoryStructure}
	KindDeclarationStmt         = Kind{"DeclarationStmt", CategoryStatement}
	KindScriptList              = Kind{"ScriptList", CategoryStructure}
	KindScript                  = Kind{"Script", CategoryStructure}
	KindProcedureDefinitionList = Kind{"ProcedureDefinitionList", CategoryStructure}
	KindProcedureDefinition     = Kind{"ProcedureDefinition", CategoryStructure}
	KindParameterDefinitionList = Kind{"ParameterDefinitionList", CategoryStructure}
	KindParameterDefinition     = Kind{"ParameterDefinition", CategoryStructure}
	KindStmtList                = Kind{"StmtList", CategoryStmtList}
	KindStrID                   = Kind{"StrId", CategoryIdentifier}
	KindNumberLiteral           = Kind{"NumberLiteral", CategoryLiteral}
	KindStringLiteral           = Kind{"StringLiteral", CategoryLiteral}
	KindBoolLiteral             = Kind{"BoolLiteral", CategoryLiteral}
	KindColorLiteral            = Kind{"ColorLiteral", CategoryLiteral}
	KindNever                   = Kind{"Never", CategoryEvent}
)

var catalog = map[string]Category{}

func register(c Category, names ...string) {
	for _, name := range names {
		catalog[name] = c
	}
}

func init() {
	for _, k := range []Kind{
		KindProgram, KindProgramMetadata, KindActorDefinitionList, KindActorDefinition,
		KindActorMetadata, KindDeclarationStmtList, KindDeclarationStmt, KindScriptList,
		KindScript, KindProcedureDefinitionList, KindProcedureDefinition,
		KindParameterDefinitionList, KindParameterDefinition, KindStmtList, KindStrID,
		KindNumberLiteral, KindStringLiteral, KindBoolLiteral, KindColorLiteral, KindNever,
	} {
		catalog[k.Name] = k.Category
	}

	register(CategoryEvent,
		"GreenFlag", "KeyPressed", "Clicked", "StartedAsClone", "ReceptionOfMessage",
		"BackdropSwitchTo", "AttributeAboveValue", "ModuleLoad", "MainGuard",
	)

	register(CategoryStatement,
		// motion
		"MoveSteps", "TurnRight", "TurnLeft", "GoToPos", "GoToPosXY", "GlideSecsTo", "GlideSecsToXY",
		"PointInDirection", "PointTowards", "ChangeXBy", "SetXTo", "ChangeYBy", "SetYTo",
		"IfOnEdgeBounce", "SetRotationStyle",
		// looks
		"Say", "SayForSecs", "Think", "ThinkForSecs", "SwitchCostumeTo", "NextCostume",
		"SwitchBackdrop", "NextBackdrop", "Show", "Hide", "ChangeSizeBy", "SetSizeTo",
		"ChangeGraphicEffectBy", "SetGraphicEffectTo", "ClearGraphicEffects", "GoToLayer",
		// sound
		"PlaySoundUntilDone", "StartSound", "StopAllSounds", "ChangeVolumeBy", "SetVolumeTo",
		// control
		"WaitSeconds", "RepeatTimesStmt", "RepeatForeverStmt", "IfThenStmt", "IfElseStmt",
		"WaitUntil", "UntilStmt", "StopAll", "StopThisScript", "StopOtherScriptsInSprite",
		"CreateCloneOf", "DeleteClone",
		// events
		"Broadcast", "BroadcastAndWait",
		// sensing
		"AskAndWait", "ResetTimer", "SetDragMode",
		// variables and lists
		"SetVariableTo", "ChangeVariableBy", "ShowVariable", "HideVariable",
		"AddTo", "DeleteOf", "DeleteAllOf", "InsertAt", "ReplaceItem",
		// procedures and pen
		"CallStmt", "ExpressionStmt", "PenDownStmt", "PenUpStmt", "PenClearStmt", "PenStampStmt",
		"SetPenColorToColorStmt",
	)

	register(CategoryExpression,
		"Add", "Minus", "Mult", "Div", "Mod", "BiggerThan", "LessThan", "Equals",
		"And", "Or", "Not", "Join", "LetterOf", "LengthOfString", "StringContains",
		"PickRandom", "Round", "NumFunctOf", "Touching", "IsKeyPressed", "IsMouseDown",
		"MouseX", "MouseY", "Answer", "Timer", "Loudness", "DistanceTo", "Current",
		"DaysSince2000", "Username", "AttributeOf", "Variable", "Qualified", "ItemOfVariable",
		"IndexOf", "LengthOfVar", "ListContains", "PositionX", "PositionY", "Direction",
		"Size", "Costume", "Backdrop", "Volume", "Key", "Message", "AsString", "AsNumber",
		"AsBool", "ColorTouchingColor", "SpriteTouchingColor", "Parameter",
	)
}

// LookupKind returns the kind for a tag. Unknown tags are classified by
// their naming: literal, identifier and metadata markers first, statement
// lists by suffix, everything else as a statement.
func LookupKind(name string) Kind {
	if c, ok := catalog[name]; ok {
		return Kind{Name: name, Category: c}
	}
	switch {
	case strings.Contains(name, "Literal"):
		return Kind{Name: name, Category: CategoryLiteral}
	case strings.Contains(name, "StrId"):
		return Kind{Name: name, Category: CategoryIdentifier}
	case strings.Contains(name, "Metadata"):
		return Kind{Name: name, Category: CategoryMetadata}
	case strings.HasSuffix(name, "StmtList"):
		return Kind{Name: name, Category: CategoryStmtList}
	default:
		return Kind{Name: name, Category: CategoryStatement}
	}
}

// IsKnownKind reports whether the tag is part of the built-in catalog.
func IsKnownKind(name string) bool {
	_, ok := catalog[name]
	return ok
}

// CamelCase converts snake_case or dashed identifiers into a tag, for
// example "motion_movesteps" with prefix stripping done by the caller or
// "if_statement" -> "IfStatement".
func CamelCase(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == '_' || r == '-' || r == ' ' || r == '.' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
