package combat

import "fmt"

func fatalityText(attacker, target *Combatant, part BodyPartType) string {
	switch part {
	case Head:
		return fmt.Sprintf("%s puts a round through %s's skull. Bone splinters, and the body folds to the ground without a sound.",
			attacker.Name, target.Name)
	case Arm:
		return fmt.Sprintf("%s's round shatters %s's arm at the bone. The limb hangs useless by a strip of torn flesh.",
			attacker.Name, target.Name)
	case Leg:
		return fmt.Sprintf("%s blows out %s's leg. The femur gives way and %s drops hard into the dirt.",
			attacker.Name, target.Name, target.Name)
	default:
		return fmt.Sprintf("%s's shot tears through %s's chest. Ribs crack, and %s collapses, choking on blood.",
			attacker.Name, target.Name, target.Name)
	}
}

func hitText(attacker, target *Combatant, part BodyPartType, damage int) string {
	return fmt.Sprintf("%s hits %s in the %s for %d damage!", attacker.Name, target.Name, part, damage)
}

func overkillText(attacker, target *Combatant, part BodyPartType) string {
	return fmt.Sprintf("%s's round catches the crippled %s in the %s. That finishes them.", attacker.Name, target.Name, part)
}

func missText(attacker, target *Combatant) string {
	return fmt.Sprintf("%s fires at %s and misses.", attacker.Name, target.Name)
}
