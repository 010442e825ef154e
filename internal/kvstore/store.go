package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nimasrn/trader-ledger/internal/model"
	"github.com/nimasrn/trader-ledger/pkg/logger"
	"github.com/nimasrn/trader-ledger/pkg/prom"
	"github.com/nimasrn/trader-ledger/pkg/redis"
)

const backend = "redis"

const (
	collectionTraders      = "traders"
	collectionTransactions = "transactions"
	collectionProductTypes = "productTypes"

	usersKey = "users"
)

// Store keeps every user collection in one hash (users:{uid}:{collection}),
// field = entity id, value = JSON document.
type Store struct {
	rdb redis.RedisAdapter
}

func NewStore(rdb redis.RedisAdapter) *Store {
	return &Store{rdb: rdb}
}

func collectionKey(userID, collection string) string {
	return fmt.Sprintf("users:%s:%s", userID, collection)
}

type batchKey struct{}

// batch holds the writes of one unit of work until it commits.
type batch struct {
	ops []func(p redis.Pipeliner)
}

// WithinTransaction stages every write made with the ctx passed to fn and
// flushes them in a single MULTI/EXEC once fn returns nil. Reads inside fn see
// committed state only. Nested calls join the outer unit of work.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(batchKey{}).(*batch); ok {
		return fn(ctx)
	}

	b := &batch{}
	if err := fn(context.WithValue(ctx, batchKey{}, b)); err != nil {
		return err
	}
	if len(b.ops) == 0 {
		return nil
	}
	return s.flush(ctx, b.ops)
}

func (s *Store) flush(ctx context.Context, ops []func(p redis.Pipeliner)) error {
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, op := range ops {
			op(p)
		}
		return nil
	})
	return err
}

// write queues op in the ctx batch, or runs it at once when there is none.
func (s *Store) write(ctx context.Context, userID string, op func(p redis.Pipeliner)) error {
	register := func(p redis.Pipeliner) {
		p.SAdd(ctx, s.rdb.Key(usersKey), userID)
	}
	if b, ok := ctx.Value(batchKey{}).(*batch); ok {
		b.ops = append(b.ops, op, register)
		return nil
	}
	return s.flush(ctx, []func(p redis.Pipeliner){op, register})
}

func (s *Store) put(ctx context.Context, userID, collection, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	key := s.rdb.Key(collectionKey(userID, collection))
	return s.write(ctx, userID, func(p redis.Pipeliner) {
		p.HSet(ctx, key, id, raw)
	})
}

func (s *Store) remove(ctx context.Context, userID, collection string, ids ...string) error {
	key := s.rdb.Key(collectionKey(userID, collection))
	return s.write(ctx, userID, func(p redis.Pipeliner) {
		p.HDel(ctx, key, ids...)
	})
}

func (s *Store) get(ctx context.Context, userID, collection, id string, doc any) (bool, error) {
	raw, err := s.rdb.HGet(ctx, collectionKey(userID, collection), id)
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return false, nil
		}
		return false, err
	}
	return true, json.Unmarshal(raw, doc)
}

// all decodes every document of a collection, ordered by id. Undecodable
// documents are skipped with a warning.
func all[T any](ctx context.Context, s *Store, userID, collection string) ([]T, error) {
	raw, err := s.rdb.HGetAll(ctx, collectionKey(userID, collection))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]T, 0, len(raw))
	for _, id := range ids {
		var doc T
		if err := json.Unmarshal([]byte(raw[id]), &doc); err != nil {
			logger.Warn("skipping undecodable document", "user_id", userID, "collection", collection, "id", id, "error", err)
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

func (s *Store) ListTraders(ctx context.Context, userID string) ([]model.Trader, error) {
	defer prom.ObserveStoreOp(backend, "list_traders", time.Now())

	docs, err := all[model.TraderDocument](ctx, s, userID, collectionTraders)
	if err != nil {
		return nil, err
	}
	traders := make([]model.Trader, 0, len(docs))
	for _, d := range docs {
		traders = append(traders, d.Model())
	}
	sort.SliceStable(traders, func(i, j int) bool { return traders[i].Name < traders[j].Name })
	return traders, nil
}

func (s *Store) GetTrader(ctx context.Context, userID, id string) (*model.Trader, error) {
	var doc model.TraderDocument
	found, err := s.get(ctx, userID, collectionTraders, id, &doc)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, model.ErrTraderNotFound
	}
	t := doc.Model()
	return &t, nil
}

func (s *Store) SaveTrader(ctx context.Context, userID string, t model.Trader) error {
	defer prom.ObserveStoreOp(backend, "save_trader", time.Now())
	return s.put(ctx, userID, collectionTraders, t.ID, t.Document())
}

func (s *Store) TouchTrader(ctx context.Context, userID, id string, at time.Time) error {
	t, err := s.GetTrader(ctx, userID, id)
	if err != nil {
		return err
	}
	t.LastTransactionDate = &at
	return s.put(ctx, userID, collectionTraders, id, t.Document())
}

// DeleteTrader removes the trader and every transaction referencing it in
// one unit of work.
func (s *Store) DeleteTrader(ctx context.Context, userID, id string) error {
	defer prom.ObserveStoreOp(backend, "delete_trader", time.Now())

	return s.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.GetTrader(ctx, userID, id); err != nil {
			return err
		}
		txs, err := s.ListTransactions(ctx, userID, model.TransactionFilter{TraderID: id})
		if err != nil {
			return err
		}
		if len(txs) > 0 {
			ids := make([]string, 0, len(txs))
			for _, tx := range txs {
				ids = append(ids, tx.ID)
			}
			if err := s.remove(ctx, userID, collectionTransactions, ids...); err != nil {
				return err
			}
		}
		return s.remove(ctx, userID, collectionTraders, id)
	})
}

func (s *Store) ListTransactions(ctx context.Context, userID string, filter model.TransactionFilter) ([]model.Transaction, error) {
	defer prom.ObserveStoreOp(backend, "list_transactions", time.Now())

	docs, err := all[model.TransactionDocument](ctx, s, userID, collectionTransactions)
	if err != nil {
		return nil, err
	}
	txs := make([]model.Transaction, 0, len(docs))
	for _, d := range docs {
		if filter.TraderID != "" && d.TraderID != filter.TraderID {
			continue
		}
		tx := d.Model()
		if tx.Date.IsZero() {
			tx.Date = model.ParseDate(d.Date)
		}
		if filter.From != nil && tx.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && tx.Date.After(*filter.To) {
			continue
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (s *Store) GetTransaction(ctx context.Context, userID, id string) (*model.Transaction, error) {
	var doc model.TransactionDocument
	found, err := s.get(ctx, userID, collectionTransactions, id, &doc)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, model.ErrTransactionNotFound
	}
	tx := doc.Model()
	if tx.Date.IsZero() {
		tx.Date = model.ParseDate(doc.Date)
	}
	return &tx, nil
}

func (s *Store) SaveTransaction(ctx context.Context, userID string, tx model.Transaction) error {
	defer prom.ObserveStoreOp(backend, "save_transaction", time.Now())
	return s.put(ctx, userID, collectionTransactions, tx.ID, tx.Document())
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	defer prom.ObserveStoreOp(backend, "delete_transaction", time.Now())

	if _, err := s.GetTransaction(ctx, userID, id); err != nil {
		return err
	}
	return s.remove(ctx, userID, collectionTransactions, id)
}

func (s *Store) CountByProductType(ctx context.Context, userID, productTypeID string) (int64, error) {
	docs, err := all[model.TransactionDocument](ctx, s, userID, collectionTransactions)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, d := range docs {
		if d.ProductType == productTypeID {
			n++
		}
	}
	return n, nil
}

func (s *Store) ListProductTypes(ctx context.Context, userID string) ([]model.ProductType, error) {
	defer prom.ObserveStoreOp(backend, "list_product_types", time.Now())

	docs, err := all[model.ProductTypeDocument](ctx, s, userID, collectionProductTypes)
	if err != nil {
		return nil, err
	}
	pts := make([]model.ProductType, 0, len(docs))
	for _, d := range docs {
		pts = append(pts, d.Model())
	}
	model.SortProductTypes(pts)
	return pts, nil
}

func (s *Store) GetProductType(ctx context.Context, userID, id string) (*model.ProductType, error) {
	var doc model.ProductTypeDocument
	found, err := s.get(ctx, userID, collectionProductTypes, id, &doc)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, model.ErrProductTypeNotFound
	}
	p := doc.Model()
	return &p, nil
}

func (s *Store) SaveProductType(ctx context.Context, userID string, p model.ProductType) error {
	defer prom.ObserveStoreOp(backend, "save_product_type", time.Now())
	return s.put(ctx, userID, collectionProductTypes, p.ID, p.Document())
}

func (s *Store) DeleteProductType(ctx context.Context, userID, id string) error {
	if _, err := s.GetProductType(ctx, userID, id); err != nil {
		return err
	}
	return s.remove(ctx, userID, collectionProductTypes, id)
}

func (s *Store) Snapshot(ctx context.Context, userID string) (model.Snapshot, error) {
	defer prom.ObserveStoreOp(backend, "snapshot", time.Now())

	var snap model.Snapshot
	var err error
	if snap.Traders, err = s.ListTraders(ctx, userID); err != nil {
		return snap, err
	}
	if snap.Transactions, err = s.ListTransactions(ctx, userID, model.TransactionFilter{}); err != nil {
		return snap, err
	}
	if snap.ProductTypes, err = s.ListProductTypes(ctx, userID); err != nil {
		return snap, err
	}
	return snap, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	users, err := s.rdb.SMembers(ctx, usersKey)
	if err != nil {
		return nil, err
	}
	sort.Strings(users)
	return users, nil
}
