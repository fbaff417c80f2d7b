package common

import "math/rand/v2"

// 默认昵称词库
var (
	adjectives = []string{
		"Brave", "Clever", "Happy", "Mystic", "Cool",
		"Elegant", "Cute", "Mighty", "Calm", "Lively",
		"Witty", "Dashing", "Gentle", "Bold", "Chill",
		"Shiny", "Charming", "Sneaky", "Sleepy", "Frosty",
	}

	animals = []string{
		"Chick", "Panda", "Tiger", "Lion", "Monkey",
		"Rabbit", "Fox", "Dolphin", "Penguin", "Koala",
		"Corgi", "Shiba", "Ragdoll", "Chinchilla", "Hamster",
		"Hedgehog", "Squirrel", "Raccoon", "Otter", "Alpaca",
	}
)

// GenerateNickname 生成形容词 + 动物的默认昵称
func GenerateNickname() string {
	return adjectives[rand.IntN(len(adjectives))] + animals[rand.IntN(len(animals))]
}
