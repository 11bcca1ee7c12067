package provider

import (
	"strings"

	"github.com/ludo-technologies/pqhint/internal/ast"
)

// hatOpcodes map script triggers to event kinds.
var hatOpcodes = map[string]string{
	"event_whenflagclicked":        "GreenFlag",
	"event_whenkeypressed":         "KeyPressed",
	"event_whenthisspriteclicked":  "Clicked",
	"event_whenstageclicked":       "Clicked",
	"control_start_as_clone":       "StartedAsClone",
	"event_whenbroadcastreceived":  "ReceptionOfMessage",
	"event_whenbackdropswitchesto": "BackdropSwitchTo",
	"event_whengreaterthan":        "AttributeAboveValue",
}

var blockOpcodes = map[string]string{
	// motion
	"motion_movesteps":        "MoveSteps",
	"motion_turnright":        "TurnRight",
	"motion_turnleft":         "TurnLeft",
	"motion_goto":             "GoToPos",
	"motion_gotoxy":           "GoToPosXY",
	"motion_glideto":          "GlideSecsTo",
	"motion_glidesecstoxy":    "GlideSecsToXY",
	"motion_pointindirection": "PointInDirection",
	"motion_pointtowards":     "PointTowards",
	"motion_changexby":        "ChangeXBy",
	"motion_setx":             "SetXTo",
	"motion_changeyby":        "ChangeYBy",
	"motion_sety":             "SetYTo",
	"motion_ifonedgebounce":   "IfOnEdgeBounce",
	"motion_setrotationstyle": "SetRotationStyle",
	"motion_xposition":        "PositionX",
	"motion_yposition":        "PositionY",
	"motion_direction":        "Direction",
	// looks
	"looks_say":                 "Say",
	"looks_sayforsecs":          "SayForSecs",
	"looks_think":               "Think",
	"looks_thinkforsecs":        "ThinkForSecs",
	"looks_switchcostumeto":     "SwitchCostumeTo",
	"looks_nextcostume":         "NextCostume",
	"looks_switchbackdropto":    "SwitchBackdrop",
	"looks_nextbackdrop":        "NextBackdrop",
	"looks_show":                "Show",
	"looks_hide":                "Hide",
	"looks_changesizeby":        "ChangeSizeBy",
	"looks_setsizeto":           "SetSizeTo",
	"looks_changeeffectby":      "ChangeGraphicEffectBy",
	"looks_seteffectto":         "SetGraphicEffectTo",
	"looks_cleargraphiceffects": "ClearGraphicEffects",
	"looks_gotofrontback":       "GoToLayer",
	"looks_size":                "Size",
	"looks_costumenumbername":   "Costume",
	"looks_backdropnumbername":  "Backdrop",
	// sound
	"sound_playuntildone":  "PlaySoundUntilDone",
	"sound_play":           "StartSound",
	"sound_stopallsounds":  "StopAllSounds",
	"sound_changevolumeby": "ChangeVolumeBy",
	"sound_setvolumeto":    "SetVolumeTo",
	"sound_volume":         "Volume",
	// control
	"control_wait":              "WaitSeconds",
	"control_repeat":            "RepeatTimesStmt",
	"control_forever":           "RepeatForeverStmt",
	"control_if":                "IfThenStmt",
	"control_if_else":           "IfElseStmt",
	"control_wait_until":        "WaitUntil",
	"control_repeat_until":      "UntilStmt",
	"control_create_clone_of":   "CreateCloneOf",
	"control_delete_this_clone": "DeleteClone",
	// events
	"event_broadcast":        "Broadcast",
	"event_broadcastandwait": "BroadcastAndWait",
	// sensing
	"sensing_askandwait":           "AskAndWait",
	"sensing_resettimer":           "ResetTimer",
	"sensing_setdragmode":          "SetDragMode",
	"sensing_touchingobject":       "Touching",
	"sensing_touchingcolor":        "SpriteTouchingColor",
	"sensing_coloristouchingcolor": "ColorTouchingColor",
	"sensing_keypressed":           "IsKeyPressed",
	"sensing_mousedown":            "IsMouseDown",
	"sensing_mousex":               "MouseX",
	"sensing_mousey":               "MouseY",
	"sensing_answer":               "Answer",
	"sensing_timer":                "Timer",
	"sensing_loudness":             "Loudness",
	"sensing_distanceto":           "DistanceTo",
	"sensing_current":              "Current",
	"sensing_dayssince2000":        "DaysSince2000",
	"sensing_username":             "Username",
	"sensing_of":                   "AttributeOf",
	// operators
	"operator_add":       "Add",
	"operator_subtract":  "Minus",
	"operator_multiply":  "Mult",
	"operator_divide":    "Div",
	"operator_mod":       "Mod",
	"operator_gt":        "BiggerThan",
	"operator_lt":        "LessThan",
	"operator_equals":    "Equals",
	"operator_and":       "And",
	"operator_or":        "Or",
	"operator_not":       "Not",
	"operator_join":      "Join",
	"operator_letter_of": "LetterOf",
	"operator_length":    "LengthOfString",
	"operator_contains":  "StringContains",
	"operator_random":    "PickRandom",
	"operator_round":     "Round",
	"operator_mathop":    "NumFunctOf",
	// variables and lists
	"data_setvariableto":     "SetVariableTo",
	"data_changevariableby":  "ChangeVariableBy",
	"data_showvariable":      "ShowVariable",
	"data_hidevariable":      "HideVariable",
	"data_addtolist":         "AddTo",
	"data_deleteoflist":      "DeleteOf",
	"data_deletealloflist":   "DeleteAllOf",
	"data_insertatlist":      "InsertAt",
	"data_replaceitemoflist": "ReplaceItem",
	"data_itemoflist":        "ItemOfVariable",
	"data_itemnumoflist":     "IndexOf",
	"data_lengthoflist":      "LengthOfVar",
	"data_listcontainsitem":  "ListContains",
	// procedures
	"procedures_call":                 "CallStmt",
	"argument_reporter_string_number": "Parameter",
	"argument_reporter_boolean":       "Parameter",
	// pen
	"pen_penDown":            "PenDownStmt",
	"pen_penUp":              "PenUpStmt",
	"pen_clear":              "PenClearStmt",
	"pen_stamp":              "PenStampStmt",
	"pen_setPenColorToColor": "SetPenColorToColorStmt",
}

// reporterPrefixes mark opcode families whose unknown members are expressions.
var reporterPrefixes = []string{"operator_", "sensing_", "argument_"}

// stopKinds resolve control_stop by its STOP_OPTION field.
var stopKinds = map[string]string{
	"all":                     "StopAll",
	"this script":             "StopThisScript",
	"other scripts in sprite": "StopOtherScriptsInSprite",
	"other scripts in stage":  "StopOtherScriptsInSprite",
}

// isHat reports whether opcode starts a script.
func isHat(opcode string) bool {
	_, ok := hatOpcodes[opcode]
	return ok
}

// eventKind maps a hat opcode to its event kind.
func eventKind(opcode string) ast.Kind {
	if name, ok := hatOpcodes[opcode]; ok {
		return ast.Kind{Name: name, Category: ast.CategoryEvent}
	}
	return ast.Kind{Name: opcodeName(opcode), Category: ast.CategoryEvent}
}

// blockKind maps a non-hat opcode to a kind. Unknown opcodes are named by
// their CamelCase form without the category prefix; reporters is true when
// the block sits in an input slot.
func blockKind(opcode string, reporter bool) ast.Kind {
	if name, ok := blockOpcodes[opcode]; ok {
		return ast.LookupKind(name)
	}
	category := ast.CategoryStatement
	if reporter {
		category = ast.CategoryExpression
	}
	for _, prefix := range reporterPrefixes {
		if strings.HasPrefix(opcode, prefix) {
			category = ast.CategoryExpression
		}
	}
	return ast.Kind{Name: opcodeName(opcode), Category: category}
}

// opcodeName strips the category prefix: "pen_changePenSizeBy" -> "ChangePenSizeBy".
func opcodeName(opcode string) string {
	if i := strings.Index(opcode, "_"); i >= 0 && i < len(opcode)-1 {
		opcode = opcode[i+1:]
	}
	return ast.CamelCase(opcode)
}
