package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	accountRepo "dinewise/database/repository/account"
	"dinewise/models"
	"dinewise/utils"
)

var (
	_ accountRepo.CustomerRepository = (*CustomerRepo)(nil)
	_ accountRepo.OwnerRepository    = (*OwnerRepo)(nil)
)

type CustomerRepo struct{ s *Store }

func cloneCustomer(c models.Customer) models.Customer {
	c.PreferredCuisines = slices.Clone(c.PreferredCuisines)
	return c
}

func (r *CustomerRepo) Create(_ context.Context, c *models.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c.Email = strings.ToLower(c.Email)
	for _, existing := range r.s.customers {
		if existing.Email == c.Email {
			return utils.Conflict("a customer with email %s already exists", c.Email)
		}
	}
	if c.PreferredCuisines == nil {
		c.PreferredCuisines = []string{}
	}
	r.s.customers[c.ID] = cloneCustomer(*c)
	return nil
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*models.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.customers[id]
	if !ok {
		return nil, utils.NotFound("customer %s not found", id)
	}
	c = cloneCustomer(c)
	return &c, nil
}

func (r *CustomerRepo) GetByEmail(_ context.Context, email string) (*models.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, c := range r.s.customers {
		if c.Email == email {
			c = cloneCustomer(c)
			return &c, nil
		}
	}
	return nil, utils.NotFound("customer %s not found", email)
}

func (r *CustomerRepo) UpdateProfile(_ context.Context, c *models.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.customers[c.ID]
	if !ok {
		return utils.NotFound("customer %s not found", c.ID)
	}
	current.FirstName = c.FirstName
	current.LastName = c.LastName
	current.Bio = c.Bio
	current.ProfileImage = c.ProfileImage
	current.UpdatedAt = c.UpdatedAt
	r.s.customers[c.ID] = current
	return nil
}

func (r *CustomerRepo) UpdatePreferences(_ context.Context, id string, cuisines []string, suburb string) (*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.customers[id]
	if !ok {
		return nil, utils.NotFound("customer %s not found", id)
	}
	if cuisines == nil {
		cuisines = []string{}
	}
	c.PreferredCuisines = slices.Clone(cuisines)
	c.PreferredSuburb = suburb
	c.UpdatedAt = time.Now()
	r.s.customers[id] = c
	c = cloneCustomer(c)
	return &c, nil
}

func (r *CustomerRepo) IncrementReviewCount(_ context.Context, id string, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.customers[id]
	if !ok {
		return nil
	}
	if c.ReviewCount+delta >= 0 {
		c.ReviewCount += delta
		r.s.customers[id] = c
	}
	return nil
}

func (r *CustomerRepo) SetReviewCount(_ context.Context, id string, count int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.customers[id]
	if !ok {
		return utils.NotFound("customer %s not found", id)
	}
	c.ReviewCount = count
	r.s.customers[id] = c
	return nil
}

func (r *CustomerRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.customers[id]; !ok {
		return utils.NotFound("customer %s not found", id)
	}
	delete(r.s.customers, id)
	return nil
}

type OwnerRepo struct{ s *Store }

func (r *OwnerRepo) Create(_ context.Context, o *models.Owner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o.Email = strings.ToLower(o.Email)
	for _, existing := range r.s.owners {
		if existing.Email == o.Email {
			return utils.Conflict("an owner with email %s already exists", o.Email)
		}
	}
	r.s.owners[o.ID] = *o
	return nil
}

func (r *OwnerRepo) GetByID(_ context.Context, id string) (*models.Owner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.owners[id]
	if !ok {
		return nil, utils.NotFound("owner %s not found", id)
	}
	return &o, nil
}

func (r *OwnerRepo) GetByEmail(_ context.Context, email string) (*models.Owner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, o := range r.s.owners {
		if o.Email == email {
			return &o, nil
		}
	}
	return nil, utils.NotFound("owner %s not found", email)
}
