package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/gasdepot-api/internal/application/ports"
)

const namespace = "gasdepot"

// Prometheus implementa ports.Metrics sobre un registro propio.
type Prometheus struct {
	registry *prometheus.Registry

	movements     *prometheus.CounterVec
	cylinders     *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	batchStatus   *prometheus.CounterVec
	bulkMovements *prometheus.CounterVec
	bulkLitres    *prometheus.CounterVec
	auditAppends  *prometheus.CounterVec
	chainChecks   *prometheus.CounterVec
	chainChecked  prometheus.Gauge
	chainDuration prometheus.Histogram
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	httpInFlight  prometheus.Gauge
}

var _ ports.Metrics = (*Prometheus)(nil)

// New crea las métricas y las registra junto con los colectores de Go y del proceso.
func New() *Prometheus {
	m := &Prometheus{registry: prometheus.NewRegistry()}

	m.movements = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cylinder_movements_total",
		Help:      "Movimientos de cilindros registrados por tipo",
	}, []string{"movement_type"})
	m.cylinders = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cylinders_moved_total",
		Help:      "Cilindros movidos por tipo de movimiento",
	}, []string{"movement_type"})
	m.rejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_rejected_total",
		Help:      "Operaciones rechazadas por operación y motivo",
	}, []string{"operation", "reason"})
	m.batchStatus = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refill_batch_transitions_total",
		Help:      "Transiciones de lotes de recarga por estado destino",
	}, []string{"status"})
	m.bulkMovements = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bulk_movements_total",
		Help:      "Movimientos de granel por tipo",
	}, []string{"movement_type"})
	m.bulkLitres = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bulk_litres_total",
		Help:      "Litros movidos por tipo de movimiento de granel",
	}, []string{"movement_type"})
	m.auditAppends = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_appended_total",
		Help:      "Intentos de agregar eventos a la cadena de auditoría",
	}, []string{"result"})
	m.chainChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_chain_verifications_total",
		Help:      "Verificaciones de la cadena por resultado",
	}, []string{"result"})
	m.chainChecked = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_chain_last_checked_records",
		Help:      "Registros revisados en la última verificación",
	})
	m.chainDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_chain_verification_seconds",
		Help:      "Duración de la verificación de la cadena",
		Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 60},
	})
	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Peticiones HTTP por método, ruta y código",
	}, []string{"method", "path", "status"})
	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duración de las peticiones HTTP",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path"})
	m.httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "Peticiones HTTP en curso",
	})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.movements, m.cylinders, m.rejections, m.batchStatus,
		m.bulkMovements, m.bulkLitres,
		m.auditAppends, m.chainChecks, m.chainChecked, m.chainDuration,
		m.httpRequests, m.httpDuration, m.httpInFlight,
	)
	return m
}

// Registry devuelve el registro de Prometheus.
func (m *Prometheus) Registry() *prometheus.Registry { return m.registry }

func (m *Prometheus) MovementRecorded(movementType string, quantity int64) {
	m.movements.WithLabelValues(movementType).Inc()
	m.cylinders.WithLabelValues(movementType).Add(float64(quantity))
}

func (m *Prometheus) OperationRejected(operation, reason string) {
	m.rejections.WithLabelValues(operation, reason).Inc()
}

func (m *Prometheus) BatchTransitioned(status string) {
	m.batchStatus.WithLabelValues(status).Inc()
}

func (m *Prometheus) BulkMovementRecorded(movementType string, litres float64) {
	m.bulkMovements.WithLabelValues(movementType).Inc()
	if litres < 0 {
		litres = -litres
	}
	m.bulkLitres.WithLabelValues(movementType).Add(litres)
}

func (m *Prometheus) AuditAppended(ok bool) {
	m.auditAppends.WithLabelValues(result(ok)).Inc()
}

func (m *Prometheus) ChainVerified(valid bool, checked int64, elapsed time.Duration) {
	r := "valid"
	if !valid {
		r = "broken"
	}
	m.chainChecks.WithLabelValues(r).Inc()
	m.chainChecked.Set(float64(checked))
	m.chainDuration.Observe(elapsed.Seconds())
}

// Handler expone el registro en formato de exposición de Prometheus.
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// FiberHandler adapta Handler para montarlo en Fiber.
func (m *Prometheus) FiberHandler() fiber.Handler {
	return adaptor.HTTPHandler(m.Handler())
}

// Middleware mide cada petición usando la ruta registrada (no la URL) como etiqueta.
func (m *Prometheus) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		m.httpRequests.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
