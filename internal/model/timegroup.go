// Package model はドメインモデルを定義する。
package model

import "sort"

// TimetableTimeGroup は同一開始時刻の項目をまとめたリスト表示用のグループ。
// 派生値であり永続化されない。
type TimetableTimeGroup struct {
	StartsTimeString string
	EndsTimeString   string
	Items            []TimetableItemWithFavorite
}

// GroupByStartTime は時刻順の項目コレクションを開始時刻ごとのグループに分割する。
//
// グルーピングのキーは各項目の正確なStartsAt時刻であり、丸めは行わない。
// 同一の時刻を持つ項目だけが同じグループに入る。
// 表示用の開始・終了時刻ペアは各グループの最初に出現した項目から取り、
// JSTの24時間表記"HH:mm"でフォーマットする。同一開始時刻で終了時刻が異なる
// 項目が混在した場合も、表示される終了時刻は最初の項目のものになる。
// グループは開始時刻の昇順、グループ内は出現順を保つ。
// 空の入力に対しては空のスライスを返し、エラーにはならない。
func GroupByStartTime(items []TimetableItemWithFavorite) []TimetableTimeGroup {
	type bucket struct {
		startsAt int64
		group    TimetableTimeGroup
	}

	buckets := map[int64]*bucket{}
	var order []int64

	for _, item := range items {
		key := item.StartsAt.UnixNano()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{
				startsAt: key,
				group: TimetableTimeGroup{
					StartsTimeString: item.StartsTimeString(),
					EndsTimeString:   item.EndsTimeString(),
				},
			}
			buckets[key] = b
			order = append(order, key)
		}
		b.group.Items = append(b.group.Items, item)
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	groups := make([]TimetableTimeGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, buckets[key].group)
	}
	return groups
}
