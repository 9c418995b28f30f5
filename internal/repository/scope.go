package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ==================== 读取范围 ====================

// Scope 读取范围：公开访问只能看到 active 行，管理员看到全部
type Scope int

const (
	ScopePublic Scope = iota
	ScopeAdmin
)

// apply 按范围追加过滤条件，column 为带表名前缀的 active 列
func (s Scope) apply(db *gorm.DB, column string) *gorm.DB {
	if s == ScopeAdmin {
		return db
	}
	return db.Where(column+" = ?", true)
}

// ==================== 排序工具 ====================

// MoveDirection 相邻交换方向
type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// OrderEntry 全量重排时的一项
type OrderEntry struct {
	ID         int64
	OrderIndex int
}

type orderRow struct {
	ID         int64
	OrderIndex int
}

// nextOrderIndex 返回 max(order_index)+1，空表返回 0
func nextOrderIndex(ctx context.Context, db *gorm.DB, table string) (int, error) {
	var max int64
	err := db.WithContext(ctx).
		Table(table).
		Select("COALESCE(MAX(order_index), -1)").
		Row().
		Scan(&max)
	if err != nil {
		return 0, err
	}
	return int(max) + 1, nil
}

// swapAdjacent 与相邻行交换位置
// 先按 (order_index, id) 取出完整顺序，交换后把变化的行写回连续下标，
// order_index 重复时也能得到确定的结果。调用方负责放进事务
func swapAdjacent(ctx context.Context, tx *gorm.DB, table string, id int64, dir MoveDirection) error {
	var rows []orderRow
	err := tx.WithContext(ctx).
		Table(table).
		Select("id, order_index").
		Order("order_index ASC, id ASC").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	pos := -1
	for i, row := range rows {
		if row.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return gorm.ErrRecordNotFound
	}

	target := pos - 1
	if dir == MoveDown {
		target = pos + 1
	}
	if target < 0 || target >= len(rows) {
		// 已在边界，无需移动
		return nil
	}
	rows[pos], rows[target] = rows[target], rows[pos]

	now := time.Now()
	for i, row := range rows {
		if row.OrderIndex == i {
			continue
		}
		err := tx.WithContext(ctx).
			Table(table).
			Where("id = ?", row.ID).
			Updates(map[string]interface{}{"order_index": i, "updated_at": now}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// rewriteOrder 全量重排，任一 id 不存在则返回 ErrRecordNotFound
func rewriteOrder(ctx context.Context, tx *gorm.DB, table string, entries []OrderEntry) error {
	now := time.Now()
	for _, e := range entries {
		res := tx.WithContext(ctx).
			Table(table).
			Where("id = ?", e.ID).
			Updates(map[string]interface{}{"order_index": e.OrderIndex, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// notFoundAsNil 把 ErrRecordNotFound 转为 (nil, nil)
func notFoundAsNil[T any](v *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
