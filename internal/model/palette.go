package model

// Color is one entry of the fixed tracker palette.
type Color struct {
	Name string
	Hex  string
}

var Colors = []Color{
	{Name: "red", Hex: "#FD4C49"},
	{Name: "beige", Hex: "#FF881E"},
	{Name: "blue", Hex: "#007BFA"},
	{Name: "green", Hex: "#33CF69"},
	{Name: "orange", Hex: "#F6C48B"},
	{Name: "purple", Hex: "#6E44FE"},
	{Name: "dark-blue-purple", Hex: "#35347C"},
	{Name: "dark-pink", Hex: "#E66DD4"},
	{Name: "dirty-blue", Hex: "#7994F5"},
	{Name: "dusty-rose", Hex: "#F9D4D4"},
	{Name: "light-blue", Hex: "#34A7FE"},
	{Name: "dirty-purple", Hex: "#8D72E6"},
	{Name: "red-orange", Hex: "#FF674D"},
	{Name: "light-green", Hex: "#46E69D"},
	{Name: "bright-pink", Hex: "#FF99CC"},
	{Name: "bright-green", Hex: "#2FD058"},
	{Name: "pink-purple", Hex: "#AD56DA"},
	{Name: "bright-purple", Hex: "#832CF1"},
}

var Emojis = []string{
	"🙂", "😻", "🌺", "🐶", "❤️", "😱", "😇", "😡", "🥶",
	"🤔", "🙌", "🍔", "🥦", "🏓", "🥇", "🎸", "🏝", "😪",
}

func ValidColor(name string) bool {
	_, ok := LookupColor(name)
	return ok
}

func LookupColor(name string) (Color, bool) {
	for _, c := range Colors {
		if c.Name == name {
			return c, true
		}
	}
	return Color{}, false
}

func ValidEmoji(e string) bool {
	for _, candidate := range Emojis {
		if candidate == e {
			return true
		}
	}
	return false
}
