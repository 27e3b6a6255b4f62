package redis

import (
	"fmt"

	"github.com/scene-hunter/scenehunter/internal/model"
)

// Key prefixes namespace all dev server data in Redis
const keyPrefix = "scenehunter"

func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

func photosKey(roomID model.RoomID, playerID model.PlayerID) string {
	return fmt.Sprintf("%s:photos:%s:%s", keyPrefix, roomID, playerID)
}

func photoIndexKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:photoindex:%s", keyPrefix, roomID)
}
