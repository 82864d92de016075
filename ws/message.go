package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"go-catan/dto"
	"go-catan/engine"
	"go-catan/entities"
	"go-catan/service"

	"github.com/gin-gonic/gin/binding"
	"github.com/mitchellh/mapstructure"
)

type actionFunc func(ctx context.Context, g *service.Game, username string, msg map[string]interface{}) (any, error)

var actions = map[string]actionFunc{
	"join": func(ctx context.Context, g *service.Game, username string, msg map[string]interface{}) (any, error) {
		return g.Join(ctx, username)
	},
	"setColor": func(ctx context.Context, g *service.Game, username string, msg map[string]interface{}) (any, error) {
		var req dto.ColorRequest
		if err := decodePayload(msg, &req); err != nil {
			return nil, err
		}
		return g.SetColor(ctx, username, req.Color)
	},
	"ready": func(ctx context.Context, g *service.Game, username string, msg map[string]interface{}) (any, error) {
		return g.ToggleReady(ctx, username)
	},
	"endTurn": func(ctx context.Context, g *service.Game, username string, msg map[string]interface{}) (any, error) {
		return g.EndTurn(ctx, username)
	},
	"rollDice": func(ctx context.Context, g *service.Game, username string, msg map[string]interface{}) (any, error) {
		var req dto.DiceRequest
		if err := decodePayload(msg, &req); err != nil {
			return nil, err
		}
		return g.RollDice(ctx, username, req.DiceResult)
	},
	"moveThief": func(ctx context.Context, g *service.Game, username string, msg map[string]interface{}) (any, error) {
		var req dto.ThiefRequest
		if err := decodePayload(msg, &req); err != nil {
			return nil, err
		}
		return nil, g.MoveThief(ctx, username, req.HexID)
	},
	"buildPath": func(ctx context.Context, g *service.Game, username string, msg map[string]interface{}) (any, error) {
		var req dto.PathRequest
		if err := decodePayload(msg, &req); err != nil {
			return nil, err
		}
		return g.BuildRoad(ctx, username, req.BuildID)
	},
	"buildTown": func(ctx context.Context, g *service.Game, username string, msg map[string]interface{}) (any, error) {
		var req dto.TownRequest
		if err := decodePayload(msg, &req); err != nil {
			return nil, err
		}
		return g.BuildTown(ctx, username, req.BuildID, req.Level)
	},
	"drawCard": func(ctx context.Context, g *service.Game, username string, msg map[string]interface{}) (any, error) {
		return g.DrawCard(ctx, username)
	},
	"bankTrade": func(ctx context.Context, g *service.Game, username string, msg map[string]interface{}) (any, error) {
		var req dto.BankTradeRequest
		if err := decodePayload(msg, &req); err != nil {
			return nil, err
		}
		balance, err := g.BankTrade(ctx, username, entities.ResourceType(req.FromID), entities.ResourceType(req.ToID))
		return balance.Amounts(), err
	},
	"proposeTrade": func(ctx context.Context, g *service.Game, username string, msg map[string]interface{}) (any, error) {
		var req dto.TradeRequest
		if err := decodePayload(msg, &req); err != nil {
			return nil, err
		}
		tn, _, err := g.ProposeTrade(ctx, username, req.ToPlayerID, req.Resources)
		return tn, err
	},
	"resolveTrade": func(ctx context.Context, g *service.Game, username string, msg map[string]interface{}) (any, error) {
		var req dto.ResolveTradeRequest
		if err := decodePayload(msg, &req); err != nil {
			return nil, err
		}
		return nil, g.ResolveTrade(ctx, username, req.TradeID, *req.Accept)
	},
	"sync": func(ctx context.Context, g *service.Game, username string, msg map[string]interface{}) (any, error) {
		return g.GameState(ctx)
	},
}

// 自定义 HookFunc，把字符串转换成 int
func stringToIntHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Kind, to reflect.Kind, data interface{}) (interface{}, error) {
		if from == reflect.String && (to == reflect.Int || to == reflect.Int64) {
			return strconv.Atoi(data.(string))
		}
		return data, nil
	}
}

// decodePayload fills out from the loosely typed message map and runs the binding rules of its tags.
func decodePayload(msg map[string]interface{}, out interface{}) error {
	decoderConfig := &mapstructure.DecoderConfig{
		DecodeHook: stringToIntHookFunc(),
		Result:     out,
		TagName:    "json",
	}
	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return fmt.Errorf("创建解码器失败: %w", err)
	}
	if err := decoder.Decode(msg); err != nil {
		return engine.Invalid("Invalid request payload").With("%v", err)
	}
	if err := binding.Validator.ValidateStruct(out); err != nil {
		return engine.Invalid("Invalid request payload").With("%v", err)
	}
	return nil
}

// dispatch runs one inbound frame and builds the reply sent back to the same client.
func dispatch(ctx context.Context, g *service.Game, username string, raw []byte) dto.WsReply {
	msg := make(map[string]interface{})
	if err := json.Unmarshal(raw, &msg); err != nil {
		return errorReply("", engine.Invalid("消息解析失败"))
	}
	var head dto.WsAction
	if err := decodePayload(msg, &head); err != nil {
		rid, _ := msg["requestId"].(string)
		return errorReply(rid, err)
	}

	action, ok := actions[head.Type]
	if !ok {
		return errorReply(head.RequestID, engine.Invalid("未知的消息类型: "+head.Type))
	}
	data, err := action(ctx, g, username, msg)
	if err != nil {
		return errorReply(head.RequestID, err)
	}
	return dto.WsReply{Type: "reply", RequestID: head.RequestID, OK: true, Data: data}
}

func errorReply(requestID string, err error) dto.WsReply {
	return dto.WsReply{
		Type:      "reply",
		RequestID: requestID,
		OK:        false,
		Code:      engine.CodeOf(err),
		Message:   engine.MessageOf(err),
	}
}
