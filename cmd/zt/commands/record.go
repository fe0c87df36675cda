package commands

import (
	"context"
	"time"

	"ztools/pkg/journal"
	"ztools/pkg/zipper"
)

// record 把一次操作写进操作日志；日志本身的失败不影响命令结果
func record(ctx context.Context, op journal.Operation, start time.Time, err error) {
	if ZT == nil {
		return
	}
	op.DurationMs = time.Since(start).Milliseconds()
	op.Status = journal.StatusOK
	if err != nil {
		op.Status = journal.StatusFailed
		op.ErrorKind = string(zipper.KindOf(err))
		op.Detail = err.Error()
	}
	ZT.Record(ctx, &op)
}
