package errors

import "errors"

// ErrConditionalUpdateMiss 条件更新未命中：目标行不存在或已被其他操作抢先转移状态
// 共享码兑换、撤销等一次性状态转移依赖该语义（affected rows == 0 即判定未命中）
var ErrConditionalUpdateMiss = errors.New("记录状态已变更，条件更新未生效")
