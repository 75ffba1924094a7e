package profession

import "github.com/project-tktt/vacancy-hub/internal/domain"

// Entries are ordered so that specific titles come before the generic ones
// they contain ("Менеджер по продажам" before "Менеджер").
var canonical = []CanonicalProfession{
	{
		Name:     "Менеджер по продажам",
		Category: "Продажи",
		Synonyms: []string{"sales manager", "менеджер по работе с клиентами", "manager vânzări", "торговый представитель", "торговый агент"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Менеджер по продажам", "Manager vânzări"},
			domain.Source999MD:    {"Менеджер по продажам"},
			domain.SourceMaklerMD: {"Менеджер по продажам", "Торговый агент"},
			domain.SourceHHRU:     {"Менеджер по продажам, менеджер по работе с клиентами"},
		},
	},
	{
		Name:     "HR-менеджер",
		Category: "Персонал",
		Synonyms: []string{"менеджер по персоналу", "рекрутер", "recruiter", "hr manager", "specialist resurse umane"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Менеджер по персоналу", "Specialist resurse umane"},
			domain.Source999MD:    {"Менеджер по персоналу"},
			domain.SourceMaklerMD: {"Менеджер по персоналу"},
			domain.SourceHHRU:     {"Менеджер по персоналу", "Специалист по подбору персонала"},
		},
	},
	{
		Name:     "Продавец",
		Category: "Торговля",
		Synonyms: []string{"продавец-консультант", "продавец консультант", "консультант в магазин", "vânzător", "vanzator", "vânzător-consultant", "sales assistant"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Продавец-консультант", "Vânzător-consultant"},
			domain.Source999MD:    {"Продавец", "Продавец-консультант"},
			domain.SourceMaklerMD: {"Продавец"},
			domain.SourceHHRU:     {"Продавец-консультант, продавец-кассир"},
		},
	},
	{
		Name:     "Кассир",
		Category: "Торговля",
		Synonyms: []string{"кассир-операционист", "casier", "cashier"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Кассир", "Casier"},
			domain.Source999MD:    {"Кассир"},
			domain.SourceMaklerMD: {"Кассир"},
			domain.SourceHHRU:     {"Кассир-операционист"},
		},
	},
	{
		Name:     "Бухгалтер",
		Category: "Финансы",
		Synonyms: []string{"главный бухгалтер", "помощник бухгалтера", "contabil", "accountant"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Бухгалтер", "Contabil"},
			domain.Source999MD:    {"Бухгалтер / Экономист"},
			domain.SourceMaklerMD: {"Бухгалтер"},
			domain.SourceHHRU:     {"Бухгалтер"},
		},
	},
	{
		Name:     "Программист",
		Category: "IT",
		Synonyms: []string{"разработчик", "developer", "programmator", "software engineer", "веб-разработчик", "программист-разработчик"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Programator", "Программист"},
			domain.Source999MD:    {"Программист / Разработчик"},
			domain.SourceMaklerMD: {"Программист"},
			domain.SourceHHRU:     {"Программист, разработчик"},
		},
	},
	{
		Name:     "Тестировщик",
		Category: "IT",
		Synonyms: []string{"qa engineer", "qa", "tester", "инженер по тестированию"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Tester", "Тестировщик"},
			domain.Source999MD:    {"Тестировщик"},
			domain.SourceHHRU:     {"Тестировщик"},
		},
	},
	{
		Name:     "Оператор call-центра",
		Category: "Клиентский сервис",
		Synonyms: []string{"оператор колл-центра", "оператор call центра", "call center operator", "operator call center", "оператор на телефоне"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Operator call-center", "Оператор call-центра"},
			domain.Source999MD:    {"Оператор call-центра"},
			domain.SourceMaklerMD: {"Оператор на телефоне"},
			domain.SourceHHRU:     {"Оператор call-центра, специалист контактного центра"},
		},
	},
	{
		Name:     "Водитель",
		Category: "Транспорт",
		Synonyms: []string{"шофер", "driver", "șofer", "sofer", "водитель-экспедитор"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Șofer", "Водитель"},
			domain.Source999MD:    {"Водитель"},
			domain.SourceMaklerMD: {"Водитель"},
			domain.SourceHHRU:     {"Водитель"},
		},
	},
	{
		Name:     "Курьер",
		Category: "Транспорт",
		Synonyms: []string{"courier", "curier", "доставщик", "курьер-доставщик"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Curier", "Курьер"},
			domain.Source999MD:    {"Курьер"},
			domain.SourceMaklerMD: {"Курьер"},
			domain.SourceHHRU:     {"Курьер"},
		},
	},
	{
		Name:     "Повар",
		Category: "Общепит",
		Synonyms: []string{"cook", "bucătar", "bucatar", "шеф-повар", "chef"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Bucătar", "Повар"},
			domain.Source999MD:    {"Повар"},
			domain.SourceMaklerMD: {"Повар"},
			domain.SourceHHRU:     {"Повар, пекарь, кондитер"},
		},
	},
	{
		Name:     "Официант",
		Category: "Общепит",
		Synonyms: []string{"ospătar", "ospatar", "waiter", "waitress"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Ospătar", "Официант"},
			domain.Source999MD:    {"Официант"},
			domain.SourceMaklerMD: {"Официант"},
			domain.SourceHHRU:     {"Официант, бармен, бариста"},
		},
	},
	{
		Name:     "Бармен",
		Category: "Общепит",
		Synonyms: []string{"barman", "бариста", "barista", "bartender"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Barman", "Бармен"},
			domain.Source999MD:    {"Бармен"},
			domain.SourceHHRU:     {"Официант, бармен, бариста"},
		},
	},
	{
		Name:     "Администратор",
		Category: "Офис",
		Synonyms: []string{"administrator", "администратор зала", "ресепшионист", "receptionist"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Administrator", "Администратор"},
			domain.Source999MD:    {"Администратор"},
			domain.SourceMaklerMD: {"Администратор"},
			domain.SourceHHRU:     {"Администратор"},
		},
	},
	{
		Name:     "Маркетолог",
		Category: "Маркетинг",
		Synonyms: []string{"marketer", "marketing manager", "интернет-маркетолог", "specialist marketing", "smm-менеджер"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Specialist marketing", "Маркетолог"},
			domain.Source999MD:    {"Маркетинг / Реклама"},
			domain.SourceMaklerMD: {"Маркетолог"},
			domain.SourceHHRU:     {"Маркетолог-аналитик", "SMM-менеджер, контент-менеджер"},
		},
	},
	{
		Name:     "Дизайнер",
		Category: "Дизайн",
		Synonyms: []string{"designer", "графический дизайнер", "ui/ux дизайнер", "designer grafic", "веб-дизайнер"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Designer grafic", "Дизайнер"},
			domain.Source999MD:    {"Дизайнер"},
			domain.SourceMaklerMD: {"Дизайнер"},
			domain.SourceHHRU:     {"Дизайнер, художник"},
		},
	},
	{
		Name:     "Юрист",
		Category: "Юриспруденция",
		Synonyms: []string{"jurist", "lawyer", "юрисконсульт", "адвокат"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Jurist", "Юрист"},
			domain.Source999MD:    {"Юрист"},
			domain.SourceMaklerMD: {"Юрист"},
			domain.SourceHHRU:     {"Юрисконсульт", "Юрист"},
		},
	},
	{
		Name:     "Медсестра",
		Category: "Медицина",
		Synonyms: []string{"медицинская сестра", "медбрат", "asistentă medicală", "asistenta medicala", "nurse"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Asistentă medicală", "Медсестра"},
			domain.Source999MD:    {"Медсестра"},
			domain.SourceHHRU:     {"Медицинская сестра, медицинский брат"},
		},
	},
	{
		Name:     "Врач",
		Category: "Медицина",
		Synonyms: []string{"medic", "doctor", "терапевт"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Medic", "Врач"},
			domain.Source999MD:    {"Врач"},
			domain.SourceHHRU:     {"Врач"},
		},
	},
	{
		Name:     "Учитель",
		Category: "Образование",
		Synonyms: []string{"педагог", "преподаватель", "profesor", "teacher"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Profesor", "Учитель"},
			domain.Source999MD:    {"Учитель / Преподаватель"},
			domain.SourceMaklerMD: {"Учитель"},
			domain.SourceHHRU:     {"Учитель, преподаватель, педагог"},
		},
	},
	{
		Name:     "Электрик",
		Category: "Производство",
		Synonyms: []string{"электромонтер", "электромонтажник", "electrician"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Electrician", "Электрик"},
			domain.Source999MD:    {"Электрик"},
			domain.SourceMaklerMD: {"Электрик"},
			domain.SourceHHRU:     {"Электромонтажник"},
		},
	},
	{
		Name:     "Сварщик",
		Category: "Производство",
		Synonyms: []string{"электросварщик", "sudor", "welder"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Sudor", "Сварщик"},
			domain.Source999MD:    {"Сварщик"},
			domain.SourceMaklerMD: {"Сварщик"},
			domain.SourceHHRU:     {"Сварщик"},
		},
	},
	{
		Name:     "Разнорабочий",
		Category: "Производство",
		Synonyms: []string{"подсобный рабочий", "muncitor necalificat", "general worker", "грузчик"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Muncitor necalificat", "Разнорабочий"},
			domain.Source999MD:    {"Разнорабочий"},
			domain.SourceMaklerMD: {"Разнорабочий", "Грузчик"},
			domain.SourceHHRU:     {"Грузчик", "Разнорабочий"},
		},
	},
	{
		Name:     "Уборщица",
		Category: "Обслуживание",
		Synonyms: []string{"уборщик", "клинер", "femeie de serviciu", "cleaner", "cleaning"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Femeie de serviciu", "Уборщица"},
			domain.Source999MD:    {"Уборщица"},
			domain.SourceMaklerMD: {"Уборщица"},
			domain.SourceHHRU:     {"Уборщица, уборщик"},
		},
	},
	{
		Name:     "Охранник",
		Category: "Безопасность",
		Synonyms: []string{"сторож", "agent de pază", "security guard"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Agent de pază", "Охранник"},
			domain.Source999MD:    {"Охранник"},
			domain.SourceMaklerMD: {"Охранник"},
			domain.SourceHHRU:     {"Охранник"},
		},
	},
	{
		Name:     "Кладовщик",
		Category: "Логистика",
		Synonyms: []string{"складской работник", "комплектовщик", "gestionar", "storekeeper"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Gestionar", "Кладовщик"},
			domain.Source999MD:    {"Кладовщик"},
			domain.SourceMaklerMD: {"Кладовщик"},
			domain.SourceHHRU:     {"Кладовщик"},
		},
	},
	{
		Name:     "Логист",
		Category: "Логистика",
		Synonyms: []string{"менеджер по логистике", "logistician", "экспедитор", "диспетчер"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Logistician", "Логист"},
			domain.Source999MD:    {"Логист"},
			domain.SourceHHRU:     {"Логист", "Диспетчер"},
		},
	},
	{
		Name:     "Парикмахер",
		Category: "Красота",
		Synonyms: []string{"стилист", "барбер", "frizer", "hairdresser"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Frizer", "Парикмахер"},
			domain.Source999MD:    {"Парикмахер"},
			domain.SourceMaklerMD: {"Парикмахер"},
			domain.SourceHHRU:     {"Парикмахер"},
		},
	},
	{
		Name:     "Менеджер",
		Category: "Управление",
		Synonyms: []string{"manager", "управляющий"},
		SourceMappings: map[domain.Source][]string{
			domain.SourceRabotaMD: {"Manager", "Менеджер"},
			domain.Source999MD:    {"Менеджер"},
			domain.SourceHHRU:     {"Руководитель отдела продаж", "Менеджер"},
		},
	},
}
