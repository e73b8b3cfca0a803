package elapsed

import "sort"

// DefaultMilestone is returned when no table entry matches.
const DefaultMilestone = "Namoro"

var monthlyMilestones = map[int]string{
	1:  "Bodas de Beijinho",
	2:  "Bodas de Sorvete",
	3:  "Bodas de Algodão-Doce",
	4:  "Bodas de Pipoca",
	5:  "Bodas de Chocolate",
	6:  "Bodas de Plumas",
	7:  "Bodas de Purpurina",
	8:  "Bodas de Pompom",
	9:  "Bodas de Maternidade",
	10: "Bodas de Pijama",
	11: "Bodas de Calcinha",
}

var yearlyMilestones = map[int]string{
	1:   "Bodas de Papel",
	2:   "Bodas de Algodão",
	3:   "Bodas de Couro ou Trigo",
	4:   "Bodas de Flores ou Frutas",
	5:   "Bodas de Madeira",
	6:   "Bodas de Açúcar ou Perfume",
	7:   "Bodas de Latão ou Lã",
	8:   "Bodas de Barro ou Papoula",
	9:   "Bodas de Cerâmica",
	10:  "Bodas de Estanho ou Zinco",
	11:  "Bodas de Aço",
	12:  "Bodas de Seda ou Ônix",
	13:  "Bodas de Linho ou Renda",
	14:  "Bodas de Marfim",
	15:  "Bodas de Cristal",
	20:  "Bodas de Porcelana",
	25:  "Bodas de Prata",
	30:  "Bodas de Pérola",
	35:  "Bodas de Coral",
	40:  "Bodas de Rubi",
	45:  "Bodas de Safira",
	50:  "Bodas de Ouro",
	55:  "Bodas de Esmeralda",
	60:  "Bodas de Diamante",
	65:  "Bodas de Platina",
	70:  "Bodas de Vinho",
	75:  "Bodas de Brilhante",
	80:  "Bodas de Carvalho",
	85:  "Bodas de Girassol",
	90:  "Bodas de Álamo",
	95:  "Bodas de Nogueira",
	100: "Bodas de Jequitibá",
}

// NameFor returns the anniversary label for an elapsed (years, months) pair.
// The monthly table applies only during the first year.
func NameFor(years, months int) string {
	if years == 0 {
		if name, ok := monthlyMilestones[months]; ok {
			return name
		}
		return DefaultMilestone
	}
	if name, ok := yearlyMilestones[years]; ok {
		return name
	}
	return DefaultMilestone
}

// Milestone is one table row.
type Milestone struct {
	Key  int    `json:"key"`
	Name string `json:"name"`
}

// MonthlyMilestones lists the first-year table in key order.
func MonthlyMilestones() []Milestone { return sortedMilestones(monthlyMilestones) }

// YearlyMilestones lists the yearly table in key order.
func YearlyMilestones() []Milestone { return sortedMilestones(yearlyMilestones) }

func sortedMilestones(m map[int]string) []Milestone {
	out := make([]Milestone, 0, len(m))
	for k, v := range m {
		out = append(out, Milestone{Key: k, Name: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
