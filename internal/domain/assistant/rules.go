package assistant

// rule matches when every keyword group has at least one substring hit in
// the lowercased query.
type rule struct {
	groups [][]string
	reply  string
}

func (r rule) matches(query string) bool {
	for _, group := range r.groups {
		if !containsAny(query, group) {
			return false
		}
	}
	return true
}

// FallbackReply is returned when no rule matches.
const FallbackReply = `Не понял. Попробуй: "цикл в Python", "класс в C++", "анимация в CSS"`

// Order matters: the first matching rule wins.
var rules = []rule{
	{
		groups: [][]string{{"массив", "array", "list"}, {"python"}},
		reply:  "В Python: `arr = [1, 2, 3]` или `arr = list(range(5))`",
	},
	{
		groups: [][]string{{"цикл", "loop"}, {"python"}},
		reply:  "Цикл: `for i in range(10): print(i)` или `while x > 0: ...`",
	},
	{
		groups: [][]string{{"функция", "function"}, {"python"}},
		reply:  "Функция: `def my_func(x): return x * 2`",
	},
	{
		groups: [][]string{{"класс", "class"}, {"c++"}},
		reply:  "Класс в C++:\n```cpp\nclass MyClass {\npublic:\n    int x;\n    MyClass(int val) { x = val; }\n};\n```",
	},
	{
		groups: [][]string{{"html"}, {"форма", "form"}},
		reply:  "Форма: `<form action=\"/submit\"><input type=\"text\" name=\"name\"/><button>Отправить</button></form>`",
	},
	{
		groups: [][]string{{"css"}, {"анимация", "animation"}},
		reply:  "Анимация:\n```css\n@keyframes move {\n  0% { transform: translateX(0); }\n  100% { transform: translateX(100px); }\n}\n```",
	},
	{
		groups: [][]string{{"js"}, {"объект", "object"}},
		reply:  "Объект в JS: `let obj = { name: \"Alex\", age: 25 };`",
	},
}
