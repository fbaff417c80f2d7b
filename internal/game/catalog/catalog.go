// Package catalog 提供静态词库、角色列表和随机选择工具。
package catalog

import (
	"math/rand/v2"
	"slices"
	"sort"
)

// Choice 从非空切片中均匀随机选取一个元素，空切片会 panic
func Choice[T any](items []T) T {
	return items[rand.IntN(len(items))]
}

// Characters 可选角色（头像），房间内唯一
var Characters = []string{
	"Lion", "Wolf", "Owl", "Fox", "Bear", "Cat", "Dog", "Panda",
	"Shark", "Eagle", "Snake", "Rabbit", "Mouse", "Turtle", "Monkey",
	"Elephant", "Tiger", "Dolphin", "Horse", "Goat",
}

// IsCharacter 判断是否是合法角色
func IsCharacter(name string) bool {
	return slices.Contains(Characters, name)
}

// Categories 分类 → 候选秘密词
var Categories = map[string][]string{
	"Movies": {
		"Dark Knight", "Inception", "No Smoking", "Welcome", "Dhamaal", "Phir Hera Pheri",
		"Oppenheimer", "Black Phone", "PK", "Interstellar", "12 Angry Men", "The Godfather",
	},
	"Sports": {
		"Cricket", "Football", "Hockey", "Kabbadi", "Tennis", "Badminton",
		"Table Tennis", "Basketball", "Baseball", "Boxing", "Golf", "Wrestling",
	},
	"Professor": {
		"Sharad", "Jyoti", "Kishore", "Manisha", "Balakrishna", "Ashok",
		"Khatija", "Leena", "Pranil", "Vijay", "Niyaz", "Nisha",
	},
	"Country": {
		"Pakistan", "Nepal", "Sri Lanka", "Thailand", "Maldives", "China",
		"Russia", "USA", "Germany", "Australia", "France", "Brazil",
	},
	"Food": {
		"Dal Chawal", "Dhokla", "Veg Biryani", "Chicken Biryani", "Poha", "Puran Poli",
		"Chole Bhature", "Vada Pav", "Dosa", "Shawarma", "Momos", "Prawns",
	},
	"Famous Personality": {
		"Nikola Tesla", "Einstein", "Thomas Young", "Huygens", "Newton", "Pablo Picasso",
		"Michael Jackson", "Marie Curie", "Gandhi", "Sigmund Freud", "Muhammad Ali", "Stephen Hawking",
	},
	"Random Object": {
		"Mirror", "Umbrella", "Pillow", "Clock", "Toothbrush", "Hammer",
		"Soap", "Map", "Helmet", "Bucket", "Charger", "Laptop",
	},
	"Supreme Leader": {
		"Putin", "Modi", "Mao", "Kim Jong Un", "Elon Musk", "Donald Trump",
		"Churchill", "Stalin", "Julius Caesar", "Napoleon", "Genghis Khan", "Alexander",
	},
}

// CategoryNames 返回排序后的分类名
func CategoryNames() []string {
	names := make([]string, 0, len(Categories))
	for name := range Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RandomSecret 先随机选分类，再在分类内随机选秘密词
func RandomSecret() (category, secret string) {
	category = Choice(CategoryNames())
	return category, Choice(Categories[category])
}
