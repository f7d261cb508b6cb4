package dice

// Roll evaluates an Expression using the given Source.
//
// Precondition: expr must come from Parse; src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count and
// result.Total() == sum(result.Dice) + result.Modifier.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{Expression: expr.Raw, Dice: rolled, Modifier: expr.Modifier}
}

// RollExpr parses expr and rolls it using src in a single call, through
// RollFrom.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return RollFrom(e, src), nil
}

// Roller is implemented by sources that evaluate whole expressions
// themselves, such as LoggedSource.
type Roller interface {
	Roll(expr Expression) RollResult
}

// RollFrom evaluates expr with src, delegating to src.Roll when src is a Roller.
func RollFrom(expr Expression, src Source) RollResult {
	if r, ok := src.(Roller); ok {
		return r.Roll(expr)
	}
	return Roll(expr, src)
}
