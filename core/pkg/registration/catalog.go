package registration

// LanguageOption pairs a Language with its display label
type LanguageOption struct {
	Value Language
	Label string
}

// Languages offered on the registration form
var Languages = []LanguageOption{
	{LanguageEnglish, "English"},
	{LanguageLuganda, "Luganda"},
	{LanguageRunyankole, "Runyankole"},
	{LanguageAteso, "Ateso"},
	{LanguageAcholi, "Acholi"},
}

// Districts offered on the registration form
var Districts = []string{
	"Kabale", "Kisoro", "Mbale", "Sironko", "Kapchorwa", "Gulu", "Lira", "Mbarara", "Kampala",
}

// Crops offered as a farmer's primary crop
var Crops = []string{
	"Maize", "Beans", "Coffee", "Sweet Potato", "Cassava", "Rice", "Banana", "Groundnuts",
}
