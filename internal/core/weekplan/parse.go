package weekplan

import (
	"fmt"

	"meal-planner/internal/pkg/common"
)

// Parse 取出模型輸出中的 JSON 物件並解碼
func Parse(content string) (map[string]any, error) {
	obj, err := common.ExtractJSONObject(content)
	if err != nil {
		return nil, common.WrapPipelineError(common.KindExternalFormat, "AI response was not valid JSON", err)
	}
	var raw map[string]any
	if err := common.ParseJSONLenient(obj, &raw); err != nil {
		return nil, common.WrapPipelineError(common.KindExternalFormat, "AI response was not valid JSON", err)
	}
	return raw, nil
}

// checkStructure 7 天都要存在，每餐別必須是恰好 3 個物件的陣列
func checkStructure(raw map[string]any) (structured, error) {
	var out structured
	for d := 0; d < Days; d++ {
		key := DayKey(d)
		day, ok := raw[key].(map[string]any)
		if !ok {
			return out, common.NewPipelineError(common.KindStructuralInvalid, fmt.Sprintf("missing meals for %s", key))
		}
		out[d] = make(map[Slot][]rawMeal, len(slotOrder))
		for _, slot := range slotOrder {
			list, ok := day[string(slot)].([]any)
			if !ok || len(list) != OptionsPerSlot {
				return out, common.NewPipelineError(common.KindStructuralInvalid,
					fmt.Sprintf("invalid structure for %s %s: expected %d options", key, slot, OptionsPerSlot))
			}
			meals := make([]rawMeal, 0, OptionsPerSlot)
			for i, item := range list {
				m, ok := item.(map[string]any)
				if !ok {
					return out, common.NewPipelineError(common.KindStructuralInvalid,
						fmt.Sprintf("invalid structure for %s %s: option %d is not an object", key, slot, i+1))
				}
				meals = append(meals, rawMeal(m))
			}
			out[d][slot] = meals
		}
	}
	return out, nil
}
