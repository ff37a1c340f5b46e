// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

// Label is the level of a variable in a diagram. Smaller labels are closer to
// the root.
type Label uint32

// ID identifies a node among the nodes sharing the same label.
type ID uint64

// MaxLabel is the largest label of a variable. We keep 24 bits for labels, like
// the on-disk format of the pointers in levelized files.
const MaxLabel Label = 1<<24 - 1

// MaxID is the largest identifier of a node on a given level (40 bits).
const MaxID ID = 1<<40 - 1

// terminalLabel and nilLabel are the sentinel levels used when ordering
// pointers. Terminals sort after every node and nil sorts after everything.
const (
	terminalLabel = MaxLabel + 1
	nilLabel      = MaxLabel + 2
)

// _DEFAULTMEMORY is the default memory budget (in bytes) shared by the
// priority queues of a single sweep.
const _DEFAULTMEMORY int = 64 << 20

// _DEFAULTQUEUERATIO is the share (%) of the memory budget given to the
// primary queue of a sweep. The rest goes to the secondary queue.
const _DEFAULTQUEUERATIO int = 75

// _MINQUEUEITEMS is the minimal number of elements a queue keeps in memory
// before spilling to disk, whatever the memory budget.
const _MINQUEUEITEMS int = 64

// _MAXRUNS is the largest number of sorted runs a queue keeps on disk. When a
// queue reaches it, its runs are merged into one.
const _MAXRUNS int = 64
