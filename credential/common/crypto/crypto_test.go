package crypto

import (
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/multikey"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ToLower(s))
	require.NoError(t, err)
	return b
}

func TestECDSADeterministicKnownAnswers(t *testing.T) {
	sample := []byte("sample")
	sum256 := sha256.Sum256(sample)
	sum384 := sha512.Sum384(sample)

	tests := []struct {
		name    string
		alg     multikey.Algorithm
		private string
		digest  []byte
		r, s    string
	}{
		{
			name:    "P-256 SHA-256",
			alg:     multikey.P256,
			private: "C9AFA9D845BA75166B5C215767B1D6934E50C3DB36E89B127B8A622B120F6721",
			digest:  sum256[:],
			r:       "EFD48B2AACB6A8FD1140DD9CD45E81D69D2C877B56AAF991C34D0EA84EAF3716",
			s:       "F7CB1C942D657C41D436C7A1B6E29F65F3E900DBB9AFF4064DC4AB2F843ACDA8",
		},
		{
			name:    "P-384 SHA-384",
			alg:     multikey.P384,
			private: "6B9D3DAD2E1B8C1C05B19875B6659F4DE23C3B667BF297BA9AA47740787137D896D5724E4C70A825F872C9EA60D2EDF5",
			digest:  sum384[:],
			r:       "94EDBB92A5ECB8AAD4736E56C691916B3F88140666CE9FA73D64C4EA95AD133C81A648152E44ACF96E36DD1E80FABE46",
			s:       "99EF4AEB15F178CEA1FE40DB2603138F130E740A19624526203B6351D0A3A94FA329C145786E679E7B82C71A38628AC8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := multikey.KeyMaterial{Algorithm: tt.alg, Private: true, Bytes: mustHex(t, tt.private)}

			signature, err := Sign(tt.digest, key)
			require.NoError(t, err)
			assert.Equal(t, strings.ToLower(tt.r+tt.s), hex.EncodeToString(signature))

			again, err := Sign(tt.digest, key)
			require.NoError(t, err)
			assert.Equal(t, signature, again)

			pub, err := PublicKey(key)
			require.NoError(t, err)
			ok, err := Verify(signature, tt.digest, pub)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestECDSAPublicKeyDerivation(t *testing.T) {
	tests := []struct {
		name    string
		alg     multikey.Algorithm
		curve   elliptic.Curve
		private string
		x, y    string
	}{
		{
			name:    "P-256",
			alg:     multikey.P256,
			curve:   elliptic.P256(),
			private: "C9AFA9D845BA75166B5C215767B1D6934E50C3DB36E89B127B8A622B120F6721",
			x:       "60FED4BA255A9D31C961EB74C6356D68C049B8923B61FA6CE669622E60F29FB6",
			y:       "7903FE1008B8BC99A41AE9E95628BC64F2F1B20C2D7E9F5177A3C294D4462299",
		},
		{
			name:    "P-384",
			alg:     multikey.P384,
			curve:   elliptic.P384(),
			private: "6B9D3DAD2E1B8C1C05B19875B6659F4DE23C3B667BF297BA9AA47740787137D896D5724E4C70A825F872C9EA60D2EDF5",
			x:       "EC3A4E415B4E19A4568618029F427FA5DA9A8BC4AE92E02E06AAE5286B300C64DEF8F0EA9055866064A254515480BC13",
			y:       "8015D9B72D7D57244EA8EF9AC0C621896708A59367F9DFB9F54CA84B3F1C9DB1288B231C3AE0D4FE7344FD2533264720",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := multikey.KeyMaterial{Algorithm: tt.alg, Private: true, Bytes: mustHex(t, tt.private)}
			x := new(big.Int).SetBytes(mustHex(t, tt.x))
			y := new(big.Int).SetBytes(mustHex(t, tt.y))

			pub, err := PublicKey(key)
			require.NoError(t, err)
			assert.Equal(t, elliptic.MarshalCompressed(tt.curve, x, y), pub.Bytes)
			assert.False(t, pub.Private)

			c, err := curveFor(tt.alg)
			require.NoError(t, err)
			priv, err := ecdsaPrivateKey(key, c)
			require.NoError(t, err)
			assert.Equal(t, 0, x.Cmp(priv.PublicKey.X))
			assert.Equal(t, 0, y.Cmp(priv.PublicKey.Y))
			assert.True(t, tt.curve.IsOnCurve(priv.PublicKey.X, priv.PublicKey.Y))
		})
	}

	p384 := multikey.KeyMaterial{
		Algorithm: multikey.P384,
		Private:   true,
		Bytes:     mustHex(t, "6B9D3DAD2E1B8C1C05B19875B6659F4DE23C3B667BF297BA9AA47740787137D896D5724E4C70A825F872C9EA60D2EDF5"),
	}
	pub, err := PublicKey(p384)
	require.NoError(t, err)
	encoded, err := multikey.Encode(pub)
	require.NoError(t, err)
	assert.Equal(t, "z82LkuBieyGShVBhvtE2zoiD6Kma4tJGFtkAhxR5pfkp5QPw4LutoYWhvQCnGjdVn14kujQ", encoded)
}

func TestECDSAPrivateKeyRange(t *testing.T) {
	one := big.NewInt(1)
	tests := []struct {
		name    string
		alg     multikey.Algorithm
		curve   elliptic.Curve
		scalar  func(n *big.Int) *big.Int
		wantErr bool
	}{
		{name: "P-256 zero", alg: multikey.P256, curve: elliptic.P256(), scalar: func(*big.Int) *big.Int { return new(big.Int) }, wantErr: true},
		{name: "P-256 order", alg: multikey.P256, curve: elliptic.P256(), scalar: func(n *big.Int) *big.Int { return n }, wantErr: true},
		{name: "P-256 order plus one", alg: multikey.P256, curve: elliptic.P256(), scalar: func(n *big.Int) *big.Int { return new(big.Int).Add(n, one) }, wantErr: true},
		{name: "P-256 order minus one", alg: multikey.P256, curve: elliptic.P256(), scalar: func(n *big.Int) *big.Int { return new(big.Int).Sub(n, one) }},
		{name: "P-256 one", alg: multikey.P256, curve: elliptic.P256(), scalar: func(*big.Int) *big.Int { return big.NewInt(1) }},
		{name: "P-384 zero", alg: multikey.P384, curve: elliptic.P384(), scalar: func(*big.Int) *big.Int { return new(big.Int) }, wantErr: true},
		{name: "P-384 order", alg: multikey.P384, curve: elliptic.P384(), scalar: func(n *big.Int) *big.Int { return n }, wantErr: true},
		{name: "P-384 order minus one", alg: multikey.P384, curve: elliptic.P384(), scalar: func(n *big.Int) *big.Int { return new(big.Int).Sub(n, one) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size := (tt.curve.Params().BitSize + 7) / 8
			key := multikey.KeyMaterial{
				Algorithm: tt.alg,
				Private:   true,
				Bytes:     tt.scalar(tt.curve.Params().N).FillBytes(make([]byte, size)),
			}

			pub, err := PublicKey(key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			// 1*G and (n-1)*G = -G share the generator's x coordinate.
			x, _ := elliptic.UnmarshalCompressed(tt.curve, pub.Bytes)
			require.NotNil(t, x)
			assert.Equal(t, 0, tt.curve.Params().Gx.Cmp(x))
		})
	}
}

func TestEd25519KnownAnswer(t *testing.T) {
	key := multikey.KeyMaterial{
		Algorithm: multikey.Ed25519,
		Private:   true,
		Bytes:     mustHex(t, "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"),
	}

	signature, err := Sign(nil, key)
	require.NoError(t, err)
	assert.Equal(t,
		"e5564300c360ac729086e2cc806e828a84877f1eb8e5d974d873e065224901555fb8821590a33bacc61e39701cf9b46bd25bf5f0595bbe24655141438e7a100b",
		hex.EncodeToString(signature))

	pub, err := PublicKey(key)
	require.NoError(t, err)
	assert.Equal(t, "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a", hex.EncodeToString(pub.Bytes))
}

func TestEd25519MultikeyPair(t *testing.T) {
	signer, err := NewSignerFromMultikey("z3u2en7t5LR2WtQH5PfFqMqwVHBeXouLzo6haApm8XHqvjxq")
	require.NoError(t, err)
	assert.Equal(t, multikey.Ed25519, signer.Algorithm())

	encoded, err := multikey.Encode(signer.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, "z6MkrJVnaZkeFzdQyMZu1cgjg7k1pZZ6pvBQ7XJPt4swbTQ2", encoded)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	for _, alg := range []multikey.Algorithm{multikey.Ed25519, multikey.P256, multikey.P384} {
		t.Run(string(alg), func(t *testing.T) {
			private, err := GenerateKey(alg, rand.Reader)
			require.NoError(t, err)
			signer, err := NewSigner(private)
			require.NoError(t, err)

			input := sha512.Sum384([]byte("round trip"))
			signature, err := signer.Sign(input[:])
			require.NoError(t, err)

			ok, err := Verify(signature, input[:], signer.PublicKey())
			require.NoError(t, err)
			assert.True(t, ok)

			tampered := append([]byte(nil), input[:]...)
			tampered[0] ^= 0x01
			ok, err = Verify(signature, tampered, signer.PublicKey())
			require.NoError(t, err)
			assert.False(t, ok)

			badSig := append([]byte(nil), signature...)
			badSig[len(badSig)-1] ^= 0x01
			ok, err = Verify(badSig, input[:], signer.PublicKey())
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = Verify(signature[:len(signature)-1], input[:], signer.PublicKey())
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSignatureSizes(t *testing.T) {
	tests := []struct {
		alg  multikey.Algorithm
		size int
	}{
		{multikey.Ed25519, 64},
		{multikey.P256, 64},
		{multikey.P384, 96},
	}

	for _, tt := range tests {
		t.Run(string(tt.alg), func(t *testing.T) {
			private, err := GenerateKey(tt.alg, rand.Reader)
			require.NoError(t, err)
			signature, err := Sign([]byte("0123456789abcdef0123456789abcdef"), private)
			require.NoError(t, err)
			assert.Len(t, signature, tt.size)
		})
	}
}

func TestVerifyMalformedKey(t *testing.T) {
	tests := []struct {
		name string
		key  multikey.KeyMaterial
	}{
		{name: "short ed25519", key: multikey.KeyMaterial{Algorithm: multikey.Ed25519, Bytes: make([]byte, 31)}},
		{name: "p-256 invalid point prefix", key: multikey.KeyMaterial{Algorithm: multikey.P256, Bytes: append([]byte{0x05}, make([]byte, 32)...)}},
		{name: "p-384 wrong length", key: multikey.KeyMaterial{Algorithm: multikey.P384, Bytes: make([]byte, 33)}},
		{name: "private key", key: multikey.KeyMaterial{Algorithm: multikey.Ed25519, Private: true, Bytes: make([]byte, 32)}},
		{name: "unknown algorithm", key: multikey.KeyMaterial{Algorithm: "secp256k1", Bytes: make([]byte, 33)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Verify(make([]byte, 64), []byte("input"), tt.key)
			var verr *VerificationError
			assert.True(t, errors.As(err, &verr))
		})
	}
}

func TestSignRejectsBadKeys(t *testing.T) {
	_, err := Sign([]byte("x"), multikey.KeyMaterial{Algorithm: multikey.Ed25519, Bytes: make([]byte, 32)})
	assert.Error(t, err)

	_, err = Sign([]byte("x"), multikey.KeyMaterial{Algorithm: multikey.P256, Private: true, Bytes: make([]byte, 32)})
	assert.Error(t, err)

	n := elliptic.P256().Params().N
	_, err = Sign([]byte("x"), multikey.KeyMaterial{Algorithm: multikey.P256, Private: true, Bytes: n.FillBytes(make([]byte, 32))})
	assert.Error(t, err)

	_, err = NewSigner(multikey.KeyMaterial{Algorithm: multikey.P384, Bytes: make([]byte, 49)})
	assert.Error(t, err)
}
