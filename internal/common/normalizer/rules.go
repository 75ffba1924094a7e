package normalizer

import "github.com/project-tktt/vacancy-hub/internal/domain"

// Rule maps a set of markers to one canonical value.
// Keywords match as substrings, Prefixes only at the start of a word and
// Tokens only as whole words.
type Rule struct {
	Value    string
	Keywords []string
	Prefixes []string
	Tokens   []string
}

// Table is the vocabulary of a single field.
// Exact keys are lower-cased phrases; Rules are tried in order.
type Table struct {
	Exact map[string]string
	Rules []Rule
}

const (
	CurrencyMDL = "MDL"
	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"
	CurrencyRUB = "RUB"
	CurrencyRON = "RON"
)

// noExperienceRule is checked before any stated number of years
var noExperienceRule = Rule{Value: string(domain.ExperienceNone), Keywords: []string{
	"без опыта", "нет опыта", "не требуется", "не обязателен", "no experience", "without experience",
	"fără experiență", "fara experienta", "fără experienţă", "entry level",
}}

var experienceTable = Table{
	Exact: map[string]string{
		"нет опыта":                 string(domain.ExperienceNone),
		"без опыта":                 string(domain.ExperienceNone),
		"опыт не требуется":         string(domain.ExperienceNone),
		"не требуется":              string(domain.ExperienceNone),
		"no experience":             string(domain.ExperienceNone),
		"noexperience":              string(domain.ExperienceNone),
		"no_experience":             string(domain.ExperienceNone),
		"fără experiență":           string(domain.ExperienceNone),
		"fara experienta":           string(domain.ExperienceNone),
		"от 1 года до 3 лет":        string(domain.ExperienceOneThree),
		"1-3 года":                  string(domain.ExperienceOneThree),
		"1–3 года":                  string(domain.ExperienceOneThree),
		"1-3 years":                 string(domain.ExperienceOneThree),
		"between1and3":              string(domain.ExperienceOneThree),
		"between_1_and_3":           string(domain.ExperienceOneThree),
		"de la 1 la 3 ani":          string(domain.ExperienceOneThree),
		"от 3 до 6 лет":             string(domain.ExperienceThreeSix),
		"3-6 лет":                   string(domain.ExperienceThreeSix),
		"3–6 лет":                   string(domain.ExperienceThreeSix),
		"3-6 years":                 string(domain.ExperienceThreeSix),
		"between3and6":              string(domain.ExperienceThreeSix),
		"between_3_and_6":           string(domain.ExperienceThreeSix),
		"de la 3 la 6 ani":          string(domain.ExperienceThreeSix),
		"более 6 лет":               string(domain.ExperienceSixPlus),
		"от 6 лет":                  string(domain.ExperienceSixPlus),
		"6+ years":                  string(domain.ExperienceSixPlus),
		"morethan6":                 string(domain.ExperienceSixPlus),
		"more_than_6":               string(domain.ExperienceSixPlus),
		"peste 6 ani":               string(domain.ExperienceSixPlus),
		"опыт работы более 6 лет":   string(domain.ExperienceSixPlus),
		"опыт работы от 3 до 6 лет": string(domain.ExperienceThreeSix),
	},
	// numeric markers are whole words: "от 1" must not fire on "от 15000"
	Rules: []Rule{
		noExperienceRule,
		{Value: string(domain.ExperienceSixPlus), Tokens: []string{
			"более 6", "больше 6", "от 6", "свыше 6", "6+", "more than 6", "over 6", "peste 6",
		}},
		{Value: string(domain.ExperienceThreeSix), Tokens: []string{
			"3-6", "3–6", "3 - 6", "от 3", "3 до 6", "between 3", "3 to 6", "de la 3",
		}},
		{Value: string(domain.ExperienceOneThree), Tokens: []string{
			"1-3", "1–3", "1 - 3", "от 1", "1 до 3", "от года", "between 1", "1 to 3", "de la 1",
		}},
	},
}

var employmentTable = Table{
	Exact: map[string]string{
		"полная занятость":    string(domain.EmploymentFull),
		"полный рабочий день": string(domain.EmploymentFull),
		"full time":           string(domain.EmploymentFull),
		"full-time":           string(domain.EmploymentFull),
		"full":                string(domain.EmploymentFull),
		"normă întreagă":      string(domain.EmploymentFull),
		"norma intreaga":      string(domain.EmploymentFull),
		"частичная занятость": string(domain.EmploymentPart),
		"part time":           string(domain.EmploymentPart),
		"part-time":           string(domain.EmploymentPart),
		"part":                string(domain.EmploymentPart),
		"jumătate de normă":   string(domain.EmploymentPart),
		"проектная работа":    string(domain.EmploymentProject),
		"project":             string(domain.EmploymentProject),
		"стажировка":          string(domain.EmploymentProbation),
		"internship":          string(domain.EmploymentProbation),
		"probation":           string(domain.EmploymentProbation),
	},
	Rules: []Rule{
		{Value: string(domain.EmploymentPart),
			Prefixes: []string{"частичн", "неполн", "jumătate", "jumatate", "parțial", "partial", "подработ", "совместительств"},
			Tokens:   []string{"part", "part-time"},
		},
		{Value: string(domain.EmploymentProject),
			Prefixes: []string{"проектн", "разов", "фриланс", "freelance", "temporar", "временн"},
			Tokens:   []string{"проект", "project"},
		},
		{Value: string(domain.EmploymentProbation),
			Prefixes: []string{"стажир", "стажёр", "практикант", "испытательн", "stagiu", "stagiar"},
			Tokens:   []string{"intern", "internship", "probation", "практика"},
		},
		{Value: string(domain.EmploymentFull),
			Keywords: []string{"постоянной основе"},
			Prefixes: []string{"полн", "постоянн", "deplin", "întreag", "intreag", "permanent"},
			Tokens:   []string{"full", "full-time"},
		},
	},
}

var scheduleTable = Table{
	Exact: map[string]string{
		"удаленная работа":           string(domain.ScheduleRemote),
		"удаленно":                   string(domain.ScheduleRemote),
		"remote":                     string(domain.ScheduleRemote),
		"la distanță":                string(domain.ScheduleRemote),
		"в офисе":                    string(domain.ScheduleOffice),
		"office":                     string(domain.ScheduleOffice),
		"fullday":                    string(domain.ScheduleOffice),
		"shift":                      string(domain.ScheduleOffice),
		"гибрид":                     string(domain.ScheduleHybrid),
		"гибридный формат":           string(domain.ScheduleHybrid),
		"hybrid":                     string(domain.ScheduleHybrid),
		"flexible":                   string(domain.ScheduleHybrid),
		"гибкий график":              string(domain.ScheduleHybrid),
		"на территории работодателя": string(domain.ScheduleOffice),
	},
	Rules: []Rule{
		{Value: string(domain.ScheduleHybrid), Keywords: []string{
			"гибрид", "hybrid", "hibrid", "частично удал", "комбинир", "смешан", "mixt",
		}},
		{Value: string(domain.ScheduleRemote), Keywords: []string{
			"удален", "дистанц", "remote", "la distanță", "la distanta", "из дома",
			"home office", "from home", "acasă",
		}},
		{Value: string(domain.ScheduleOffice), Keywords: []string{
			"офис", "office", "oficiu", "birou", "на месте", "на территории", "на объекте",
		}},
	},
}

var currencyTable = Table{
	Exact: map[string]string{
		"mdl": CurrencyMDL, "lei": CurrencyMDL, "лей": CurrencyMDL, "леев": CurrencyMDL,
		"eur": CurrencyEUR, "euro": CurrencyEUR, "евро": CurrencyEUR, "€": CurrencyEUR,
		"usd": CurrencyUSD, "$": CurrencyUSD, "долларов": CurrencyUSD,
		"rub": CurrencyRUB, "rur": CurrencyRUB, "руб": CurrencyRUB, "руб.": CurrencyRUB, "₽": CurrencyRUB,
		"ron": CurrencyRON,
	},
	Rules: []Rule{
		{Value: CurrencyMDL, Keywords: []string{"лей", "леев", "лея"}, Tokens: []string{"mdl", "lei"}},
		{Value: CurrencyEUR, Keywords: []string{"€", "евро"}, Tokens: []string{"eur", "euro"}},
		{Value: CurrencyUSD, Keywords: []string{"$", "долл", "dollar"}, Tokens: []string{"usd"}},
		{Value: CurrencyRUB, Keywords: []string{"₽", "руб"}, Tokens: []string{"rub", "rur"}},
		{Value: CurrencyRON, Tokens: []string{"ron"}},
	},
}

// skillTable lists known skills with their aliases.
// Aliases are matched as whole words inside free text.
var skillTable = []Rule{
	{Value: "JavaScript", Tokens: []string{"javascript", "js"}},
	{Value: "TypeScript", Tokens: []string{"typescript", "ts"}},
	{Value: "Python", Tokens: []string{"python"}},
	{Value: "Java", Tokens: []string{"java"}},
	{Value: "Go", Tokens: []string{"golang"}},
	{Value: "PHP", Tokens: []string{"php"}},
	{Value: "C#", Tokens: []string{"c#"}},
	{Value: "C++", Tokens: []string{"c++"}},
	{Value: ".NET", Tokens: []string{".net", "dotnet"}},
	{Value: "Node.js", Tokens: []string{"node.js", "nodejs", "node"}},
	{Value: "React", Tokens: []string{"react", "react.js", "reactjs"}},
	{Value: "Angular", Tokens: []string{"angular"}},
	{Value: "Vue", Tokens: []string{"vue", "vue.js", "vuejs"}},
	{Value: "SQL", Tokens: []string{"sql"}},
	{Value: "PostgreSQL", Tokens: []string{"postgresql", "postgres"}},
	{Value: "MySQL", Tokens: []string{"mysql"}},
	{Value: "Docker", Tokens: []string{"docker"}},
	{Value: "Kubernetes", Tokens: []string{"kubernetes", "k8s"}},
	{Value: "Git", Tokens: []string{"git"}},
	{Value: "Linux", Tokens: []string{"linux"}},
	{Value: "HTML", Tokens: []string{"html", "html5"}},
	{Value: "CSS", Tokens: []string{"css", "css3"}},
	{Value: "1C", Tokens: []string{"1c", "1с"}},
	{Value: "Excel", Tokens: []string{"excel"}},
	{Value: "MS Office", Tokens: []string{"ms office", "microsoft office"}},
	{Value: "Photoshop", Tokens: []string{"photoshop"}},
	{Value: "Figma", Tokens: []string{"figma"}},
	{Value: "AutoCAD", Tokens: []string{"autocad"}},
	{Value: "SAP", Tokens: []string{"sap"}},
	{Value: "English", Keywords: []string{"английск", "engleză", "engleza"}, Tokens: []string{"english"}},
	{Value: "Romanian", Keywords: []string{"румынск", "молдавск", "română", "romana"}, Tokens: []string{"romanian"}},
	{Value: "Russian", Keywords: []string{"русск", "rusă"}, Tokens: []string{"russian"}},
	{Value: "Driving license", Keywords: []string{"водительск", "права категории", "permis de conducere"}, Tokens: []string{"driving license"}},
	{Value: "Sales", Keywords: []string{"активные продажи", "техника продаж"}, Tokens: []string{"sales"}},
	{Value: "Customer service", Keywords: []string{"обслуживание клиентов", "работа с клиентами"}, Tokens: []string{"customer service"}},
	{Value: "Accounting", Keywords: []string{"бухгалтерск", "contabilitate"}, Tokens: []string{"accounting"}},
}
