package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"jewellery-backend/models"
)

// In-memory store implementations. They mirror the filtering, sorting and
// pagination semantics of the Mongo stores and back the service tests.

func paginate[T any](docs []T, page Page) []T {
	if page.Size < 1 {
		return docs
	}
	skip := page.Skip()
	if skip >= len(docs) {
		return nil
	}
	end := skip + page.Size
	if end > len(docs) {
		end = len(docs)
	}
	return docs[skip:end]
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// MemoryOrderStore is an in-memory OrderStore.
type MemoryOrderStore struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]models.Order
}

// NewMemoryOrderStore returns an empty in-memory order store.
func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[primitive.ObjectID]models.Order)}
}

func (s *MemoryOrderStore) Create(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	order.ID = primitive.NewObjectID()
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Version = 1
	s.orders[order.ID] = *order
	return nil
}

func (s *MemoryOrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &order, nil
}

func (s *MemoryOrderStore) Save(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.orders[order.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Version != order.Version {
		return ErrConflict
	}
	order.Version++
	order.UpdatedAt = time.Now()
	s.orders[order.ID] = *order
	return nil
}

func (s *MemoryOrderStore) Find(ctx context.Context, filter OrderFilter, sortBy Sort, page Page) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Order
	for _, order := range s.orders {
		if matchOrder(order, filter) {
			matched = append(matched, order)
		}
	}
	sortOrders(matched, sortBy)
	return paginate(matched, page), nil
}

func (s *MemoryOrderStore) Count(ctx context.Context, filter OrderFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, order := range s.orders {
		if matchOrder(order, filter) {
			count++
		}
	}
	return count, nil
}

func matchOrder(order models.Order, f OrderFilter) bool {
	if f.User != nil && order.User != *f.User {
		return false
	}
	if f.Status != "" && order.Status != f.Status {
		return false
	}
	if f.City != "" && !containsFold(order.ShippingAddress.City, f.City) {
		return false
	}
	if f.MinPrice != nil && order.TotalPrice < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && order.TotalPrice > *f.MaxPrice {
		return false
	}
	if f.CreatedAfter != nil && order.CreatedAt.Before(*f.CreatedAfter) {
		return false
	}
	if f.CreatedBefore != nil && order.CreatedAt.After(*f.CreatedBefore) {
		return false
	}
	return true
}

func sortOrders(orders []models.Order, by Sort) {
	if by.Field == "" {
		return
	}
	sort.SliceStable(orders, func(i, j int) bool {
		var less bool
		switch by.Field {
		case "totalPrice":
			less = orders[i].TotalPrice < orders[j].TotalPrice
		case "status":
			less = orders[i].Status < orders[j].Status
		default:
			less = orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		if by.Desc {
			return !less
		}
		return less
	})
}

// MemoryItemStore is an in-memory ItemStore.
type MemoryItemStore struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Item
}

// NewMemoryItemStore returns an empty in-memory item store.
func NewMemoryItemStore() *MemoryItemStore {
	return &MemoryItemStore{items: make(map[primitive.ObjectID]models.Item)}
}

func (s *MemoryItemStore) Create(ctx context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	item.ID = primitive.NewObjectID()
	item.CreatedAt = now
	item.UpdatedAt = now
	s.items[item.ID] = *item
	return nil
}

func (s *MemoryItemStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (s *MemoryItemStore) Save(ctx context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[item.ID]; !ok {
		return ErrNotFound
	}
	item.UpdatedAt = time.Now()
	s.items[item.ID] = *item
	return nil
}

func (s *MemoryItemStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryItemStore) Find(ctx context.Context, filter ItemFilter, sortBy Sort, page Page) ([]models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Item
	for _, item := range s.items {
		if matchItem(item, filter) {
			matched = append(matched, item)
		}
	}
	sortItems(matched, sortBy)
	return paginate(matched, page), nil
}

func (s *MemoryItemStore) Count(ctx context.Context, filter ItemFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, item := range s.items {
		if matchItem(item, filter) {
			count++
		}
	}
	return count, nil
}

func matchItem(item models.Item, f ItemFilter) bool {
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if f.Availability != "" && item.Availability != f.Availability {
		return false
	}
	if f.MinPrice != nil && item.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && item.Price > *f.MaxPrice {
		return false
	}
	if f.Search != "" {
		if !containsFold(item.Name, f.Search) &&
			!containsFold(item.Description, f.Search) &&
			!containsFold(item.Category, f.Search) {
			return false
		}
	}
	return true
}

func sortItems(items []models.Item, by Sort) {
	if by.Field == "" {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		var less bool
		switch by.Field {
		case "price":
			less = items[i].Price < items[j].Price
		case "name":
			less = items[i].Name < items[j].Name
		default:
			less = items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		if by.Desc {
			return !less
		}
		return less
	})
}

// MemoryCategoryStore is an in-memory CategoryStore.
type MemoryCategoryStore struct {
	mu         sync.Mutex
	categories map[primitive.ObjectID]models.Category
}

// NewMemoryCategoryStore returns an empty in-memory category store.
func NewMemoryCategoryStore() *MemoryCategoryStore {
	return &MemoryCategoryStore{categories: make(map[primitive.ObjectID]models.Category)}
}

func (s *MemoryCategoryStore) Create(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.Name == category.Name {
			return ErrDuplicate
		}
	}
	now := time.Now()
	category.ID = primitive.NewObjectID()
	category.CreatedAt = now
	category.UpdatedAt = now
	s.categories[category.ID] = *category
	return nil
}

func (s *MemoryCategoryStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category, ok := s.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &category, nil
}

func (s *MemoryCategoryStore) FindByName(ctx context.Context, name string) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, category := range s.categories {
		if category.Name == name {
			c := category
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryCategoryStore) Save(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[category.ID]; !ok {
		return ErrNotFound
	}
	category.UpdatedAt = time.Now()
	s.categories[category.ID] = *category
	return nil
}

func (s *MemoryCategoryStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *MemoryCategoryStore) Find(ctx context.Context, search string, sortBy Sort, page Page) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Category
	for _, category := range s.categories {
		if search == "" || containsFold(category.Name, search) {
			matched = append(matched, category)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		less := matched[i].Name < matched[j].Name
		if sortBy.Desc {
			return !less
		}
		return less
	})
	return paginate(matched, page), nil
}

func (s *MemoryCategoryStore) Count(ctx context.Context, search string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, category := range s.categories {
		if search == "" || containsFold(category.Name, search) {
			count++
		}
	}
	return count, nil
}

// MemoryPriceStore is an in-memory PriceStore.
type MemoryPriceStore struct {
	mu     sync.Mutex
	prices map[primitive.ObjectID]models.Price
}

// NewMemoryPriceStore returns an empty in-memory price store.
func NewMemoryPriceStore() *MemoryPriceStore {
	return &MemoryPriceStore{prices: make(map[primitive.ObjectID]models.Price)}
}

func (s *MemoryPriceStore) Create(ctx context.Context, price *models.Price) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	price.ID = primitive.NewObjectID()
	price.CreatedAt = now
	price.UpdatedAt = now
	s.prices[price.ID] = *price
	return nil
}

func (s *MemoryPriceStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Price, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.prices[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &price, nil
}

func (s *MemoryPriceStore) FindActive(ctx context.Context) (*models.Price, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, price := range s.prices {
		if price.IsActive {
			p := price
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryPriceStore) Save(ctx context.Context, price *models.Price) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prices[price.ID]; !ok {
		return ErrNotFound
	}
	price.UpdatedAt = time.Now()
	s.prices[price.ID] = *price
	return nil
}

func (s *MemoryPriceStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prices[id]; !ok {
		return ErrNotFound
	}
	delete(s.prices, id)
	return nil
}

func (s *MemoryPriceStore) Find(ctx context.Context, sortBy Sort, page Page) ([]models.Price, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []models.Price
	for _, price := range s.prices {
		all = append(all, price)
	}
	sort.SliceStable(all, func(i, j int) bool {
		less := all[i].CreatedAt.Before(all[j].CreatedAt)
		if sortBy.Desc {
			return !less
		}
		return less
	})
	return paginate(all, page), nil
}

func (s *MemoryPriceStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.prices)), nil
}

// MemoryQueryStore is an in-memory QueryStore.
type MemoryQueryStore struct {
	mu      sync.Mutex
	queries map[primitive.ObjectID]models.Query
}

// NewMemoryQueryStore returns an empty in-memory query store.
func NewMemoryQueryStore() *MemoryQueryStore {
	return &MemoryQueryStore{queries: make(map[primitive.ObjectID]models.Query)}
}

func (s *MemoryQueryStore) Create(ctx context.Context, query *models.Query) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	query.ID = primitive.NewObjectID()
	query.CreatedAt = now
	query.UpdatedAt = now
	s.queries[query.ID] = *query
	return nil
}

func (s *MemoryQueryStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Query, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, ok := s.queries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &query, nil
}

func (s *MemoryQueryStore) Save(ctx context.Context, query *models.Query) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.queries[query.ID]; !ok {
		return ErrNotFound
	}
	query.UpdatedAt = time.Now()
	s.queries[query.ID] = *query
	return nil
}

func (s *MemoryQueryStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.queries[id]; !ok {
		return ErrNotFound
	}
	delete(s.queries, id)
	return nil
}

func (s *MemoryQueryStore) Find(ctx context.Context, filter QueryFilter, sortBy Sort, page Page) ([]models.Query, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Query
	for _, query := range s.queries {
		if matchQuery(query, filter) {
			matched = append(matched, query)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		less := matched[i].CreatedAt.Before(matched[j].CreatedAt)
		if sortBy.Desc {
			return !less
		}
		return less
	})
	return paginate(matched, page), nil
}

func (s *MemoryQueryStore) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, query := range s.queries {
		if matchQuery(query, filter) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryQueryStore) UpdateMany(ctx context.Context, ids []primitive.ObjectID, update QueryBulkUpdate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var modified int64
	for _, id := range ids {
		query, ok := s.queries[id]
		if !ok {
			continue
		}
		if update.Status != nil {
			query.Status = *update.Status
		}
		if update.Response != nil {
			response := *update.Response
			query.AdminResponse = &response
		}
		query.UpdatedAt = time.Now()
		s.queries[id] = query
		modified++
	}
	return modified, nil
}

func matchQuery(query models.Query, f QueryFilter) bool {
	if f.User != nil && query.User != *f.User {
		return false
	}
	if f.Status != "" && query.Status != f.Status {
		return false
	}
	if f.Category != "" && query.Category != f.Category {
		return false
	}
	if f.Priority != "" && query.Priority != f.Priority {
		return false
	}
	if f.Search != "" {
		if !containsFold(query.Subject, f.Search) && !containsFold(query.Message, f.Search) {
			return false
		}
	}
	if f.Responded != nil && (query.AdminResponse != nil) != *f.Responded {
		return false
	}
	if f.CreatedAfter != nil && query.CreatedAt.Before(*f.CreatedAfter) {
		return false
	}
	return true
}

// MemoryUserStore is an in-memory UserStore.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

// NewMemoryUserStore returns an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[primitive.ObjectID]models.User)}
}

func (s *MemoryUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return ErrDuplicate
		}
	}
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}
