package room

import (
	"log"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/palemoky/impostor/internal/apperrors"
	"github.com/palemoky/impostor/internal/game/catalog"
	"github.com/palemoky/impostor/internal/types"
)

// Join 加入房间，返回分配到的角色
//
// 同名玩家视为断线后重新加入：必须选择原来的角色，旧连接的位置被新连接接管，
// 房主身份随之转移。
func (r *Room) Join(client types.Peer, name, character string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", apperrors.ErrInvalidName
	}

	var assigned string
	err := r.exec(func() error {
		connID := client.GetID()

		if r.phase.InGame() {
			return apperrors.ErrGameInProgress
		}
		if len(r.players) >= r.settings.MaxPlayers && r.players[connID] == nil {
			return apperrors.ErrRoomFull
		}
		if !catalog.IsCharacter(character) {
			return apperrors.ErrInvalidCharacter
		}

		if oldID, old := r.playerByName(name); old != nil {
			if old.Character != character {
				return apperrors.ErrCharacterLocked
			}
			r.replaceSlot(oldID, client)
			log.Printf("🔁 玩家 %s 重新加入房间 %s", name, r.Code)
		} else {
			if holder := r.characterHolder(character); holder != "" && holder != connID {
				return apperrors.ErrCharacterTaken
			}
			// 同一连接换名字加入：先让出原来的位置
			if _, exists := r.players[connID]; exists {
				r.removeSlot(connID)
			}
			r.players[connID] = &Player{Client: client, Name: name, Character: character}
			r.order = append(r.order, connID)
			if r.hostID == "" {
				r.hostID = connID
			}
			log.Printf("👤 玩家 %s (%s) 加入房间 %s", name, character, r.Code)
		}

		client.SetRoom(r.Code)
		assigned = character
		r.broadcastRoster()
		r.persist()
		return nil
	})
	return assigned, err
}

// Characters 返回房间内已被占用的角色
func (r *Room) Characters() ([]string, error) {
	var taken []string
	err := r.exec(func() error {
		taken = make([]string, 0, len(r.order))
		for _, id := range r.order {
			taken = append(taken, r.players[id].Character)
		}
		return nil
	})
	return taken, err
}

// replaceSlot 新连接接管旧位置，保留名字、角色和顺序
func (r *Room) replaceSlot(oldID string, client types.Peer) {
	newID := client.GetID()
	p := r.players[oldID]
	if oldID == newID {
		p.Client = client
		return
	}

	if p.Client != nil {
		p.Client.SetRoom("")
	}
	// 新连接若已用别的名字占了位置，先让出来
	if _, exists := r.players[newID]; exists {
		r.removeSlot(newID)
	}

	delete(r.players, oldID)
	p.Client = client
	r.players[newID] = p
	r.order[slices.Index(r.order, oldID)] = newID
	if r.hostID == oldID {
		r.hostID = newID
	}
}

// removeSlot 大厅/揭晓阶段移除某个连接的位置，房主顺延
func (r *Room) removeSlot(id string) {
	delete(r.players, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	if r.hostID == id {
		r.hostID = ""
		if len(r.order) > 0 {
			r.hostID = r.order[0]
		}
	}
}

func (r *Room) playerByName(name string) (string, *Player) {
	for _, id := range r.order {
		if p := r.players[id]; p.Name == name {
			return id, p
		}
	}
	return "", nil
}

func (r *Room) characterHolder(character string) string {
	for _, id := range r.order {
		if r.players[id].Character == character {
			return id
		}
	}
	return ""
}
