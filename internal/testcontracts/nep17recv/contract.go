package nep17recv

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

type Call struct {
	Token  interop.Hash160
	From   interop.Hash160
	Amount int
	Data   any
}

func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	ctx := storage.GetContext()
	count := storage.Get(ctx, "count")
	if count == nil {
		count = 0
	}
	storage.Put(ctx, "count", count.(int)+1)
	storage.Put(ctx, "key", std.Serialize(Call{
		Token:  runtime.GetCallingScriptHash(),
		From:   from,
		Amount: amount,
		Data:   data,
	}))
}

func Get() Call {
	val := storage.Get(storage.GetReadOnlyContext(), "key")
	if val == nil {
		return Call{}
	}
	return std.Deserialize(val.([]byte)).(Call)
}

func Count() int {
	val := storage.Get(storage.GetReadOnlyContext(), "count")
	if val == nil {
		return 0
	}
	return val.(int)
}
