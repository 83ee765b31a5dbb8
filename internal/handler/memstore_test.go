package handler

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ceforseg/panel-backend/internal/model"
	"github.com/ceforseg/panel-backend/internal/repository"
	"github.com/ceforseg/panel-backend/internal/utils"
)

// memStore is an in-memory stand-in for the SQL repositories. It reproduces
// their contracts (sentinel errors, balance arithmetic, one closing per
// date) so handlers can be exercised without a database.
type memStore struct {
	users       map[uint64]model.User
	courses     map[uint64]model.Course
	students    map[uint64]model.Student
	enrollments []*model.Enrollment
	payments    []model.Payment
	closings    map[string]model.CashClosing
	certs       []model.Certificate
	nextID      uint64
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[uint64]model.User{},
		courses:  map[uint64]model.Course{},
		students: map[uint64]model.Student{},
		closings: map[string]model.CashClosing{},
	}
}

func (m *memStore) id() uint64 { m.nextID++; return m.nextID }

// --- UserStore ---

func (m *memStore) Create(ctx context.Context, usuario, password, rol string, cost int) (uint64, error) {
	usuario = strings.ToLower(strings.TrimSpace(usuario))
	for _, u := range m.users {
		if u.Usuario == usuario {
			return 0, repository.ErrUsuarioExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	id := m.id()
	m.users[id] = model.User{ID: id, Usuario: usuario, PasswordHash: hash, Rol: rol}
	return id, nil
}

func (m *memStore) GetByUsuario(ctx context.Context, usuario string) (model.User, error) {
	usuario = strings.ToLower(strings.TrimSpace(usuario))
	for _, u := range m.users {
		if u.Usuario == usuario {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memStore) List(ctx context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Usuario < out[j].Usuario })
	return out, nil
}

func (m *memStore) Delete(ctx context.Context, id uint64) error {
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if u.Rol == model.RolGerente {
		n := 0
		for _, other := range m.users {
			if other.Rol == model.RolGerente {
				n++
			}
		}
		if n <= 1 {
			return repository.ErrLastGerente
		}
	}
	delete(m.users, id)
	return nil
}

// --- CourseStore ---

func (m *memStore) CreateCourse(nombre string, precio int64) uint64 {
	id := m.id()
	m.courses[id] = model.Course{ID: id, Nombre: nombre, Precio: precio, Activo: true}
	return id
}

func (m *memStore) ListActive(ctx context.Context) ([]model.Course, error) {
	var out []model.Course
	for _, c := range m.courses {
		if c.Activo {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (m *memStore) Get(ctx context.Context, id uint64) (model.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return model.Course{}, repository.ErrNotFound
	}
	return c, nil
}

func (m *memStore) Deactivate(ctx context.Context, id uint64) error {
	c, ok := m.courses[id]
	if !ok || !c.Activo {
		return repository.ErrNotFound
	}
	c.Activo = false
	m.courses[id] = c
	return nil
}

func (m *memStore) CountActive(ctx context.Context) (int, error) {
	n := 0
	for _, c := range m.courses {
		if c.Activo {
			n++
		}
	}
	return n, nil
}

// courseStore adapts memStore to the CourseStore interface, whose Create
// signature collides with UserStore's.
type courseStore struct{ *memStore }

func (s courseStore) Create(ctx context.Context, nombre, descripcion string, precio int64) (uint64, error) {
	id := s.memStore.id()
	s.courses[id] = model.Course{ID: id, Nombre: nombre, Descripcion: descripcion, Precio: precio, Activo: true}
	return id, nil
}

// --- StudentStore ---

type studentStore struct{ *memStore }

func (s studentStore) CreateWithEnrollments(ctx context.Context, st *model.Student, cursoIDs []uint64) ([]repository.CourseStatus, error) {
	for _, existing := range s.students {
		if existing.Cedula == st.Cedula {
			return nil, repository.ErrCedulaExists
		}
	}
	st.ID = s.id()
	s.students[st.ID] = *st
	statuses := make([]repository.CourseStatus, 0, len(cursoIDs))
	for _, cid := range cursoIDs {
		c, ok := s.courses[cid]
		if !ok || !c.Activo {
			statuses = append(statuses, repository.CourseStatus{CursoID: cid, Estado: repository.EstadoInvalido})
			continue
		}
		s.enrollments = append(s.enrollments, &model.Enrollment{
			ID: s.id(), EstudianteID: st.ID, CursoID: cid,
			PrecioCurso: c.Precio, Saldo: c.Precio, CreatedAt: time.Now(),
		})
		statuses = append(statuses, repository.CourseStatus{CursoID: cid, Estado: repository.EstadoMatriculado})
	}
	return statuses, nil
}

func (s studentStore) AddCourse(ctx context.Context, studentID, cursoID uint64) error {
	if _, ok := s.students[studentID]; !ok {
		return repository.ErrNotFound
	}
	c, ok := s.courses[cursoID]
	if !ok || !c.Activo {
		return repository.ErrCursoInvalido
	}
	s.memStore.enrollments = append(s.memStore.enrollments, &model.Enrollment{
		ID: s.id(), EstudianteID: studentID, CursoID: cursoID,
		PrecioCurso: c.Precio, Saldo: c.Precio, CreatedAt: time.Now(),
	})
	return nil
}

func (s studentStore) List(ctx context.Context, q string) ([]repository.StudentSummary, error) {
	// Matches the repository's case-insensitive LIKE over name, cedula and
	// phone.
	needle := strings.ToLower(strings.TrimSpace(q))
	var out []repository.StudentSummary
	for _, st := range s.students {
		if needle != "" &&
			!strings.Contains(strings.ToLower(st.Nombre), needle) &&
			!strings.Contains(strings.ToLower(st.Cedula), needle) &&
			!strings.Contains(strings.ToLower(st.Telefono), needle) {
			continue
		}
		sum := repository.StudentSummary{Student: st}
		for _, e := range s.enrollments {
			if e.EstudianteID == st.ID {
				sum.Cursos = append(sum.Cursos, s.courses[e.CursoID].Nombre)
				sum.SaldoTotal += e.Saldo
			}
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (s studentStore) Get(ctx context.Context, id uint64) (model.Student, error) {
	st, ok := s.students[id]
	if !ok {
		return model.Student{}, repository.ErrNotFound
	}
	return st, nil
}

func (s studentStore) Enrollments(ctx context.Context, studentID uint64) ([]repository.EnrollmentDetail, error) {
	var out []repository.EnrollmentDetail
	for _, e := range s.memStore.enrollments {
		if e.EstudianteID == studentID {
			out = append(out, repository.EnrollmentDetail{
				Enrollment: *e, CursoNombre: s.courses[e.CursoID].Nombre,
			})
		}
	}
	return out, nil
}

func (s studentStore) Update(ctx context.Context, st *model.Student) error {
	cur, ok := s.students[st.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Nombre, cur.Telefono, cur.Ciudad, cur.Direccion = st.Nombre, st.Telefono, st.Ciudad, st.Direccion
	if st.Foto != "" {
		cur.Foto = st.Foto
	}
	s.students[st.ID] = cur
	return nil
}

func (s studentStore) Delete(ctx context.Context, id uint64) error {
	if _, ok := s.students[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.students, id)
	return nil
}

func (s studentStore) Count(ctx context.Context) (int, error) { return len(s.students), nil }

func (s studentStore) OutstandingTotal(ctx context.Context) (int64, error) {
	var total int64
	for _, e := range s.memStore.enrollments {
		total += e.Saldo
	}
	return total, nil
}

// --- PaymentStore ---

type paymentStore struct {
	*memStore
	now func() time.Time
}

func (p paymentStore) Record(ctx context.Context, pay *model.Payment) (int64, error) {
	var target *model.Enrollment
	for _, e := range p.enrollments {
		if e.EstudianteID != pay.EstudianteID || e.CursoID != pay.CursoID {
			continue
		}
		if target == nil || (target.Saldo <= 0 && e.Saldo > 0) {
			target = e
		}
	}
	if target == nil {
		return 0, repository.ErrCursoInvalido
	}
	if pay.Valor > target.Saldo {
		return 0, repository.ErrSobregiro
	}
	pay.ID = p.id()
	pay.CreatedAt = p.nowOrDefault()
	target.Saldo -= pay.Valor
	p.memStore.payments = append(p.memStore.payments, *pay)
	return target.Saldo, nil
}

func (p paymentStore) nowOrDefault() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}

func (p paymentStore) ListByStudent(ctx context.Context, studentID uint64) ([]repository.PaymentDetail, error) {
	var out []repository.PaymentDetail
	for i := len(p.memStore.payments) - 1; i >= 0; i-- {
		pay := p.memStore.payments[i]
		if pay.EstudianteID == studentID {
			out = append(out, p.detail(pay))
		}
	}
	return out, nil
}

func (p paymentStore) ListRecent(ctx context.Context, limit int) ([]repository.PaymentDetail, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []repository.PaymentDetail
	for i := len(p.memStore.payments) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, p.detail(p.memStore.payments[i]))
	}
	return out, nil
}

func (p paymentStore) detail(pay model.Payment) repository.PaymentDetail {
	return repository.PaymentDetail{
		Payment:       pay,
		UsuarioNombre: p.users[pay.UsuarioID].Usuario,
		CursoNombre:   p.courses[pay.CursoID].Nombre,
	}
}

func (p paymentStore) TotalsForDate(ctx context.Context, fecha string) (map[string]int64, error) {
	totals := make(map[string]int64, len(model.Metodos))
	for _, m := range model.Metodos {
		totals[m] = 0
	}
	for _, pay := range p.memStore.payments {
		if pay.CreatedAt.Format("2006-01-02") == fecha {
			totals[pay.Metodo] += pay.Valor
		}
	}
	return totals, nil
}

// --- ClosingStore ---

type closingStore struct{ *memStore }

func (s closingStore) Create(ctx context.Context, c *model.CashClosing) error {
	if _, ok := s.closings[c.Fecha]; ok {
		return repository.ErrDiaCerrado
	}
	c.ID = s.id()
	s.closings[c.Fecha] = *c
	return nil
}

func (s closingStore) ExistsForDate(ctx context.Context, fecha string) (bool, error) {
	_, ok := s.closings[fecha]
	return ok, nil
}

func (s closingStore) List(ctx context.Context) ([]model.CashClosing, error) {
	out := make([]model.CashClosing, 0, len(s.closings))
	for _, c := range s.closings {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fecha > out[j].Fecha })
	return out, nil
}

// --- CertificateStore ---

type certStore struct{ *memStore }

func (s certStore) Create(ctx context.Context, c *model.Certificate) error {
	c.ID = s.id()
	s.certs = append(s.certs, *c)
	return nil
}

func (s certStore) ListByCedula(ctx context.Context, cedula string) ([]model.Certificate, error) {
	var out []model.Certificate
	for _, c := range s.certs {
		if c.Cedula == cedula {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FechaEmision != out[j].FechaEmision {
			return out[i].FechaEmision > out[j].FechaEmision
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
