package dictionary

import "github.com/project-tktt/vacancy-hub/internal/profession"

// synonymMap lists alternative spellings for titles sources commonly use.
// Keys are folded titles.
var synonymMap = map[string][]string{
	"программист":          {"разработчик", "developer", "programator"},
	"разработчик":          {"программист", "developer", "programator"},
	"programator":          {"программист", "разработчик", "developer"},
	"продавец":             {"продавец-консультант", "vânzător", "vanzator"},
	"продавец-консультант": {"продавец", "консультант", "vânzător-consultant"},
	"vânzător":             {"продавец", "vanzator"},
	"кассир":               {"casier", "кассир-операционист"},
	"бухгалтер":            {"contabil", "accountant", "главный бухгалтер"},
	"contabil":             {"бухгалтер", "accountant"},
	"водитель":             {"шофер", "șofer", "driver"},
	"șofer":                {"водитель", "sofer", "driver"},
	"курьер":               {"доставщик", "curier", "courier"},
	"curier":               {"курьер", "доставщик"},
	"повар":                {"кулинар", "bucătar", "cook"},
	"bucătar":              {"повар", "bucatar"},
	"официант":             {"chelner", "ospătar", "waiter"},
	"бармен":               {"barman", "бариста"},
	"менеджер по продажам": {"sales manager", "менеджер по работе с клиентами", "manager vânzări"},
	"manager vânzări":      {"менеджер по продажам", "manager vanzari"},
	"оператор call-центра": {"оператор колл-центра", "operator call center", "оператор контакт-центра"},
	"тестировщик":          {"qa engineer", "tester", "инженер по тестированию"},
	"дизайнер":             {"designer", "графический дизайнер"},
	"маркетолог":           {"marketolog", "marketing manager", "специалист по маркетингу"},
	"юрист":                {"jurist", "lawyer", "юрисконсульт"},
	"медсестра":            {"медицинская сестра", "asistentă medicală"},
	"учитель":              {"педагог", "profesor", "преподаватель"},
	"электрик":             {"электромонтер", "electrician"},
	"сварщик":              {"электросварщик", "sudor"},
	"sudor":                {"сварщик", "электросварщик"},
	"разнорабочий":         {"подсобный рабочий", "muncitor necalificat"},
	"уборщица":             {"уборщик", "клинер", "femeie de serviciu"},
	"охранник":             {"security", "agent de pază", "сторож"},
	"кладовщик":            {"gestionar", "работник склада"},
	"администратор":        {"administrator", "управляющий"},
	"hr-менеджер":          {"менеджер по персоналу", "рекрутер", "recruiter"},
	"парикмахер":           {"frizer", "coafor", "стилист"},
	"логист":               {"logistician", "специалист по логистике"},
	"врач":                 {"medic", "doctor"},
}

// GenerateSynonyms returns synonyms for a title: the static map first,
// then the canonical profession the title names exactly.
func GenerateSynonyms(title string) []string {
	folded := profession.Fold(title)
	seen := map[string]bool{folded: true}
	var out []string
	add := func(list []string) {
		for _, s := range list {
			if f := profession.Fold(s); f != "" && !seen[f] {
				seen[f] = true
				out = append(out, s)
			}
		}
	}

	add(synonymMap[folded])
	if p := profession.Anchor(title); p != nil {
		add([]string{p.Name})
		add(p.Synonyms)
	}
	return out
}
